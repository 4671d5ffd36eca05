package out

import (
	"context"
	"fmt"

	"pulse/internal/modules/permission/domain"
	permissionout "pulse/internal/modules/permission/port/out"
	"pulse/internal/platform/healthrpc"
)

type BrokerCapabilityClient struct {
	client healthrpc.Client
}

func NewBrokerCapabilityClient(client healthrpc.Client) permissionout.CapabilityClient {
	return &BrokerCapabilityClient{client: client}
}

func (c *BrokerCapabilityClient) Granted(ctx context.Context) ([]domain.Capability, error) {
	out, err := c.client.GrantedCapabilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("granted capabilities: %w", err)
	}
	return fromWire(out.Capabilities), nil
}

func (c *BrokerCapabilityClient) Request(ctx context.Context, requested []domain.Capability) ([]domain.Capability, error) {
	in := &healthrpc.CapabilitySet{Capabilities: make([]string, 0, len(requested))}
	for _, r := range requested {
		in.Capabilities = append(in.Capabilities, string(r))
	}
	out, err := c.client.RequestCapabilities(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("request capabilities: %w", err)
	}
	return fromWire(out.Capabilities), nil
}

func fromWire(raw []string) []domain.Capability {
	out := make([]domain.Capability, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.Capability(r))
	}
	return out
}
