// Package pb holds the message and service types for the sidecar gRPC
// contract defined in sidecar.proto.
//
// The types are maintained by hand in the pre-descriptor protoc-gen-go style
// so that building the project needs no protobuf toolchain; the protobuf
// runtime derives descriptors from the struct tags. Keep field numbers in
// sync with sidecar.proto.
package pb

import "github.com/golang/protobuf/proto"

// InitRequest asks the sidecar to load the model at ModelPath, which is
// either a local directory or a hub repository id (contains a "/").
type InitRequest struct {
	ModelPath string `protobuf:"bytes,1,opt,name=model_path,json=modelPath,proto3" json:"model_path,omitempty"`
	// ContextSize is accepted for compatibility and ignored; the sidecar
	// reads the context size from the model configuration.
	ContextSize int32 `protobuf:"varint,2,opt,name=context_size,json=contextSize,proto3" json:"context_size,omitempty"`
}

func (m *InitRequest) Reset()         { *m = InitRequest{} }
func (m *InitRequest) String() string { return proto.CompactTextString(m) }
func (*InitRequest) ProtoMessage()    {}

// InitResponse reports the outcome of a load. Load failures set Success to
// false with the error text in Message; the RPC itself still succeeds.
type InitResponse struct {
	Success bool   `protobuf:"varint,1,opt,name=success,proto3" json:"success,omitempty"`
	Message string `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *InitResponse) Reset()         { *m = InitResponse{} }
func (m *InitResponse) String() string { return proto.CompactTextString(m) }
func (*InitResponse) ProtoMessage()    {}

// EmbedRequest carries the text to embed.
type EmbedRequest struct {
	Text string `protobuf:"bytes,1,opt,name=text,proto3" json:"text,omitempty"`
}

func (m *EmbedRequest) Reset()         { *m = EmbedRequest{} }
func (m *EmbedRequest) String() string { return proto.CompactTextString(m) }
func (*EmbedRequest) ProtoMessage()    {}

// EmbedResponse carries the embedding vector; Dim always equals len(Vector).
type EmbedResponse struct {
	Vector []float32 `protobuf:"fixed32,1,rep,packed,name=vector,proto3" json:"vector,omitempty"`
	Dim    int32     `protobuf:"varint,2,opt,name=dim,proto3" json:"dim,omitempty"`
}

func (m *EmbedResponse) Reset()         { *m = EmbedResponse{} }
func (m *EmbedResponse) String() string { return proto.CompactTextString(m) }
func (*EmbedResponse) ProtoMessage()    {}

// GenerateRequest carries the prompt whose embedding is streamed back.
type GenerateRequest struct {
	Prompt string `protobuf:"bytes,1,opt,name=prompt,proto3" json:"prompt,omitempty"`
}

func (m *GenerateRequest) Reset()         { *m = GenerateRequest{} }
func (m *GenerateRequest) String() string { return proto.CompactTextString(m) }
func (*GenerateRequest) ProtoMessage()    {}

// GenerateResponse is one chunk of the streamed rendering. The final chunk
// has Done set, empty Text, and TokensGenerated equal to the vector length.
type GenerateResponse struct {
	Text            string `protobuf:"bytes,1,opt,name=text,proto3" json:"text,omitempty"`
	Done            bool   `protobuf:"varint,2,opt,name=done,proto3" json:"done,omitempty"`
	TokensGenerated int32  `protobuf:"varint,3,opt,name=tokens_generated,json=tokensGenerated,proto3" json:"tokens_generated,omitempty"`
}

func (m *GenerateResponse) Reset()         { *m = GenerateResponse{} }
func (m *GenerateResponse) String() string { return proto.CompactTextString(m) }
func (*GenerateResponse) ProtoMessage()    {}

// ModelInfoRequest has no fields.
type ModelInfoRequest struct{}

func (m *ModelInfoRequest) Reset()         { *m = ModelInfoRequest{} }
func (m *ModelInfoRequest) String() string { return proto.CompactTextString(m) }
func (*ModelInfoRequest) ProtoMessage()    {}

// ModelInfoResponse describes the loaded model, or reports "Not loaded".
type ModelInfoResponse struct {
	ModelName   string `protobuf:"bytes,1,opt,name=model_name,json=modelName,proto3" json:"model_name,omitempty"`
	VocabSize   int32  `protobuf:"varint,2,opt,name=vocab_size,json=vocabSize,proto3" json:"vocab_size,omitempty"`
	ContextSize int32  `protobuf:"varint,3,opt,name=context_size,json=contextSize,proto3" json:"context_size,omitempty"`
	Backend     string `protobuf:"bytes,4,opt,name=backend,proto3" json:"backend,omitempty"`
}

func (m *ModelInfoResponse) Reset()         { *m = ModelInfoResponse{} }
func (m *ModelInfoResponse) String() string { return proto.CompactTextString(m) }
func (*ModelInfoResponse) ProtoMessage()    {}

// HealthRequest has no fields.
type HealthRequest struct{}

func (m *HealthRequest) Reset()         { *m = HealthRequest{} }
func (m *HealthRequest) String() string { return proto.CompactTextString(m) }
func (*HealthRequest) ProtoMessage()    {}

// HealthResponse is always Healthy while the process answers; Message
// distinguishes the loaded and unloaded states.
type HealthResponse struct {
	Healthy bool   `protobuf:"varint,1,opt,name=healthy,proto3" json:"healthy,omitempty"`
	Message string `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *HealthResponse) Reset()         { *m = HealthResponse{} }
func (m *HealthResponse) String() string { return proto.CompactTextString(m) }
func (*HealthResponse) ProtoMessage()    {}
