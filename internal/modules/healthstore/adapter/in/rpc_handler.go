package in

import (
	"context"
	"time"

	"pulse/internal/modules/healthstore/dto"
	healthstorein "pulse/internal/modules/healthstore/port/in"
	"pulse/internal/platform/healthrpc"
)

// RPCHandler exposes the store usecase as a healthrpc provider.
type RPCHandler struct {
	usecase healthstorein.Usecase
}

var _ healthrpc.Server = RPCHandler{}

func NewRPCHandler(usecase healthstorein.Usecase) RPCHandler {
	return RPCHandler{usecase: usecase}
}

func (h RPCHandler) GrantedCapabilities(ctx context.Context, _ *healthrpc.Empty) (*healthrpc.CapabilitySet, error) {
	out, err := h.usecase.GrantedCapabilities(ctx)
	if err != nil {
		return nil, err
	}
	return &healthrpc.CapabilitySet{Capabilities: out.Capabilities}, nil
}

func (h RPCHandler) RequestCapabilities(ctx context.Context, in *healthrpc.CapabilitySet) (*healthrpc.CapabilitySet, error) {
	out, err := h.usecase.RequestCapabilities(ctx, dto.RequestInput{Capabilities: in.Capabilities})
	if err != nil {
		return nil, err
	}
	return &healthrpc.CapabilitySet{Capabilities: out.Capabilities}, nil
}

func (h RPCHandler) Insert(ctx context.Context, in *healthrpc.InsertRequest) (*healthrpc.InsertResponse, error) {
	input := dto.InsertInput{Records: make([]dto.RecordInput, 0, len(in.Records))}
	for _, r := range in.Records {
		input.Records = append(input.Records, dto.RecordInput{
			BeatsPerMinute:    r.BeatsPerMinute,
			Start:             time.Unix(0, r.StartUnixNano).UTC(),
			End:               time.Unix(0, r.EndUnixNano).UTC(),
			ZoneOffsetSeconds: r.ZoneOffsetSeconds,
		})
	}
	out, err := h.usecase.Insert(ctx, input)
	if err != nil {
		return nil, err
	}
	return &healthrpc.InsertResponse{IDs: out.IDs}, nil
}

func (h RPCHandler) Query(ctx context.Context, in *healthrpc.QueryRequest) (*healthrpc.QueryResponse, error) {
	records, err := h.usecase.Query(ctx, dto.QueryInput{
		From: time.Unix(0, in.FromUnixNano).UTC(),
		To:   time.Unix(0, in.ToUnixNano).UTC(),
	})
	if err != nil {
		return nil, err
	}
	out := &healthrpc.QueryResponse{Records: make([]healthrpc.Record, 0, len(records))}
	for _, r := range records {
		out.Records = append(out.Records, healthrpc.Record{
			ID:                r.ID,
			BeatsPerMinute:    r.BeatsPerMinute,
			StartUnixNano:     r.Start.UnixNano(),
			EndUnixNano:       r.End.UnixNano(),
			ZoneOffsetSeconds: r.ZoneOffsetSeconds,
		})
	}
	return out, nil
}
