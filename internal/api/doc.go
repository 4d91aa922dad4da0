// Package api defines the postbox.v1.Postbox gRPC service: request and
// response types, the service descriptor, a client stub and the CBOR codec
// the messages travel in.
//
// Clients select the codec per call with grpc.CallContentSubtype(CodecName);
// the stub returned by NewPostboxClient does that on every call.
package api
