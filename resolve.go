package regtap

import (
	"context"
	"fmt"

	"github.com/openvo/go-regtap/adql"
	"github.com/openvo/go-regtap/ivoid"
)

// resourceColumns is the column set for single-record lookups.
var resourceColumns = []string{
	"ivoid", "res_type", "short_name", "res_title", "res_description",
	"waveband", "reference_url", "creator_seq", "content_level",
	"created", "updated",
}

// capabilityColumns is the column set for capability lookups; one row
// per interface.
var capabilityColumns = []string{
	"ivoid", "cap_index", "cap_type", "cap_description", "standard_id",
	"intf_index", "intf_type", "intf_role", "std_version",
	"access_url", "url_use",
}

// Describe fetches the full registry record for one identifier,
// including every capability and interface the resource publishes.
//
// Role, subject, and relationship details are fetched concurrently
// afterwards; a failed side query leaves its slice empty rather than
// failing the call.
func (c *Client) Describe(ctx context.Context, id string) (*Resource, error) {
	parsed, err := ivoid.Parse(id)
	if err != nil {
		return nil, err
	}

	res, err := c.fetchResource(ctx, parsed)
	if err != nil {
		return nil, err
	}

	caps, err := c.fetchCapabilities(ctx, parsed)
	if err != nil {
		return nil, err
	}
	res.Capabilities = caps

	c.enrich(ctx, res)
	return res, nil
}

// fetchResource looks up the rr.resource record for the identifier.
func (c *Client) fetchResource(ctx context.Context, id ivoid.IVOID) (*Resource, error) {
	query, err := adql.Select(resourceColumns...).
		From("rr.resource").
		Where(adql.Eq("ivoid", id.String())).
		Build()
	if err != nil {
		return nil, err
	}

	table, _, err := c.runQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	res := resourceFromRow(table, 0)
	return &res, nil
}

// fetchCapabilities looks up the capabilities and interfaces for the
// identifier. Resources without capabilities yield an empty slice.
func (c *Client) fetchCapabilities(ctx context.Context, id ivoid.IVOID) ([]Capability, error) {
	query, err := adql.Select(capabilityColumns...).
		From("rr.capability").
		NaturalJoin("rr.interface").
		Where(adql.Eq("ivoid", id.String())).
		OrderBy("cap_index", "intf_index").
		Build()
	if err != nil {
		return nil, err
	}

	table, _, err := c.runQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	grouped := groupResources(table)
	if len(grouped) == 0 {
		return nil, nil
	}
	return grouped[0].Capabilities, nil
}

// ResolveService narrows a resource down to a single invokable
// endpoint of the given protocol family: the first standard interface
// of the first matching capability.
func (c *Client) ResolveService(ctx context.Context, id string, st ServiceType) (*Service, error) {
	if !st.Valid() {
		return nil, fmt.Errorf("unknown service type %q", st)
	}
	parsed, err := ivoid.Parse(id)
	if err != nil {
		return nil, err
	}

	res, err := c.fetchResource(ctx, parsed)
	if err != nil {
		return nil, err
	}
	caps, err := c.fetchCapabilities(ctx, parsed)
	if err != nil {
		return nil, err
	}

	return pickService(res, caps, st)
}

// AccessURL returns the invocation endpoint for the resource's service
// of the given protocol family.
func (c *Client) AccessURL(ctx context.Context, id string, st ServiceType) (string, error) {
	svc, err := c.ResolveService(ctx, id, st)
	if err != nil {
		return "", err
	}
	return svc.BaseURL, nil
}

// pickService selects the first standard interface of the capability
// matching the service type. Version fragments on the capability's
// standard identifier are ignored for matching but preserved on the
// returned service.
func pickService(res *Resource, caps []Capability, st ServiceType) (*Service, error) {
	std, _ := standardIDFor(st)

	matched := false
	for _, capability := range caps {
		capStd, err := ivoid.Parse(capability.StandardID)
		if err != nil || !capStd.WithoutFragment().Equal(std) {
			continue
		}
		matched = true

		for _, intf := range capability.Interfaces {
			if !intf.IsStandard() || intf.AccessURL == "" {
				continue
			}
			return &Service{
				IVOID:      res.IVOID,
				Title:      res.Title,
				Type:       st,
				StandardID: capability.StandardID,
				Version:    intf.Version,
				BaseURL:    intf.AccessURL,
			}, nil
		}
	}

	if matched {
		return nil, &ServiceError{IVOID: res.IVOID, Type: st, Err: ErrNoStdInterface}
	}
	return nil, &ServiceError{IVOID: res.IVOID, Type: st, Err: ErrNotFound}
}
