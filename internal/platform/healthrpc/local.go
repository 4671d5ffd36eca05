package healthrpc

import "context"

type localClient struct {
	srv Server
}

// NewLocalClient serves calls from an in-process provider without a transport.
func NewLocalClient(srv Server) Client {
	return &localClient{srv: srv}
}

func (c *localClient) GrantedCapabilities(ctx context.Context) (*CapabilitySet, error) {
	return c.srv.GrantedCapabilities(ctx, &Empty{})
}

func (c *localClient) RequestCapabilities(ctx context.Context, in *CapabilitySet) (*CapabilitySet, error) {
	return c.srv.RequestCapabilities(ctx, in)
}

func (c *localClient) Insert(ctx context.Context, in *InsertRequest) (*InsertResponse, error) {
	return c.srv.Insert(ctx, in)
}

func (c *localClient) Query(ctx context.Context, in *QueryRequest) (*QueryResponse, error) {
	return c.srv.Query(ctx, in)
}
