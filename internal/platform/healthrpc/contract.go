// Package healthrpc is the wire contract between pulse and a health store
// provider. Providers run either in-process (see NewLocalClient) or as a
// go-plugin subprocess speaking gRPC with a JSON codec.
package healthrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	apperrors "pulse/internal/platform/errors"
)

const (
	PluginMapKey  = "healthstore"
	serviceName   = "pulse.healthstore.v1.HealthStore"
	jsonCodecName = "json"

	methodGrantedCapabilities = "/" + serviceName + "/GrantedCapabilities"
	methodRequestCapabilities = "/" + serviceName + "/RequestCapabilities"
	methodInsert              = "/" + serviceName + "/Insert"
	methodQuery               = "/" + serviceName + "/Query"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "PULSE_HEALTHBROKER",
	MagicCookieValue: "pulse",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type CapabilitySet struct {
	Capabilities []string `json:"capabilities"`
}

type Record struct {
	ID                string `json:"id,omitempty"`
	BeatsPerMinute    int64  `json:"beats_per_minute"`
	StartUnixNano     int64  `json:"start_unix_nano"`
	EndUnixNano       int64  `json:"end_unix_nano"`
	ZoneOffsetSeconds int32  `json:"zone_offset_seconds"`
}

type InsertRequest struct {
	Records []Record `json:"records"`
}

type InsertResponse struct {
	IDs []string `json:"ids"`
}

type QueryRequest struct {
	FromUnixNano int64 `json:"from_unix_nano"`
	ToUnixNano   int64 `json:"to_unix_nano"`
}

type QueryResponse struct {
	Records []Record `json:"records"`
}

// Server is implemented by store providers.
type Server interface {
	GrantedCapabilities(ctx context.Context, in *Empty) (*CapabilitySet, error)
	RequestCapabilities(ctx context.Context, in *CapabilitySet) (*CapabilitySet, error)
	Insert(ctx context.Context, in *InsertRequest) (*InsertResponse, error)
	Query(ctx context.Context, in *QueryRequest) (*QueryResponse, error)
}

// Client is what pulse adapters consume regardless of where the provider runs.
type Client interface {
	GrantedCapabilities(ctx context.Context) (*CapabilitySet, error)
	RequestCapabilities(ctx context.Context, in *CapabilitySet) (*CapabilitySet, error)
	Insert(ctx context.Context, in *InsertRequest) (*InsertResponse, error)
	Query(ctx context.Context, in *QueryRequest) (*QueryResponse, error)
}

type grpcClient struct {
	conn *grpc.ClientConn
}

func NewGRPCClient(conn *grpc.ClientConn) Client {
	return &grpcClient{conn: conn}
}

func (c *grpcClient) GrantedCapabilities(ctx context.Context) (*CapabilitySet, error) {
	out := &CapabilitySet{}
	if err := c.invoke(ctx, methodGrantedCapabilities, &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *grpcClient) RequestCapabilities(ctx context.Context, in *CapabilitySet) (*CapabilitySet, error) {
	out := &CapabilitySet{}
	if err := c.invoke(ctx, methodRequestCapabilities, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *grpcClient) Insert(ctx context.Context, in *InsertRequest) (*InsertResponse, error) {
	out := &InsertResponse{}
	if err := c.invoke(ctx, methodInsert, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *grpcClient) Query(ctx context.Context, in *QueryRequest) (*QueryResponse, error) {
	out := &QueryResponse{}
	if err := c.invoke(ctx, methodQuery, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *grpcClient) invoke(ctx context.Context, method string, in, out any) error {
	if err := c.conn.Invoke(ctx, method, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return fromStatus(err)
	}
	return nil
}

func RegisterHealthStoreServer(server grpc.ServiceRegistrar, impl Server) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*Server)(nil),
		Methods: []grpc.MethodDesc{
			unary("GrantedCapabilities", methodGrantedCapabilities, impl.GrantedCapabilities),
			unary("RequestCapabilities", methodRequestCapabilities, impl.RequestCapabilities),
			unary("Insert", methodInsert, impl.Insert),
			unary("Query", methodQuery, impl.Query),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "internal/platform/healthrpc/contract.go",
	}, impl)
}

func unary[Req, Resp any](name, fullMethod string, call func(context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	invoke := func(ctx context.Context, in *Req) (any, error) {
		out, err := call(ctx, in)
		if err != nil {
			return nil, toStatus(err)
		}
		return out, nil
	}
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return invoke(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				typed, ok := req.(*Req)
				if !ok {
					return nil, fmt.Errorf("invalid request type")
				}
				return invoke(ctx, typed)
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrInvalidRate):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", apperrors.ErrPermissionDenied, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, st.Message())
	case codes.Canceled:
		return fmt.Errorf("%w: %s", context.Canceled, st.Message())
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", context.DeadlineExceeded, st.Message())
	case codes.Unavailable:
		return fmt.Errorf("%w: %s", apperrors.ErrStoreUnavailable, st.Message())
	default:
		return errors.New(st.Message())
	}
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl Server
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterHealthStoreServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewGRPCClient(conn), nil
}

func PluginMap(impl Server) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
