package tap

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
)

// Capability describes one standard protocol a service speaks, as
// published on its capabilities endpoint.
type Capability struct {
	StandardID  string         `xml:"standardID,attr"`
	Description string         `xml:"description"`
	Interfaces  []CapInterface `xml:"interface"`
}

// CapInterface is one concrete way to invoke a capability.
type CapInterface struct {
	// Type carries the xsi:type of the interface element, e.g.
	// "vs:ParamHTTP". Matching is on the local attribute name, so the
	// namespace prefix on the document side does not matter.
	Type string `xml:"type,attr"`

	Role       string      `xml:"role,attr"`
	Version    string      `xml:"version,attr"`
	AccessURLs []AccessURL `xml:"accessURL"`
}

// AccessURL is an invocation endpoint for an interface.
type AccessURL struct {
	Use string `xml:"use,attr"`
	URL string `xml:",chardata"`
}

// BaseURL returns the first access URL of the standard interface, or
// the first access URL at all when no interface is marked standard.
func (c Capability) BaseURL() string {
	for _, intf := range c.Interfaces {
		if intf.Role != "std" {
			continue
		}
		for _, u := range intf.AccessURLs {
			if s := strings.TrimSpace(u.URL); s != "" {
				return s
			}
		}
	}
	for _, intf := range c.Interfaces {
		for _, u := range intf.AccessURLs {
			if s := strings.TrimSpace(u.URL); s != "" {
				return s
			}
		}
	}
	return ""
}

// FindCapability returns the first capability whose standard identifier
// matches standardID, compared case-insensitively.
func FindCapability(caps []Capability, standardID string) (Capability, bool) {
	for _, c := range caps {
		if strings.EqualFold(strings.TrimSpace(c.StandardID), standardID) {
			return c, true
		}
	}
	return Capability{}, false
}

type capabilitiesDoc struct {
	XMLName      xml.Name     `xml:"capabilities"`
	Capabilities []Capability `xml:"capability"`
}

// Capabilities fetches the capability descriptions the service
// publishes on its VOSI endpoint.
func (c *Client) Capabilities(ctx context.Context) ([]Capability, error) {
	endpoint := c.baseURL + "/capabilities"
	status, body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", status, endpoint)
	}

	var doc capabilitiesDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("tap: parsing capabilities from %s: %w", endpoint, err)
	}
	return doc.Capabilities, nil
}

// Availability is the service's own report of whether it is accepting
// requests.
type Availability struct {
	XMLName   xml.Name `xml:"availability"`
	Available bool     `xml:"available"`

	// UpSince is the service-reported start timestamp, passed through
	// verbatim because services format it inconsistently.
	UpSince string `xml:"upSince"`

	Note string `xml:"note"`
}

// Availability fetches the service's VOSI availability report.
func (c *Client) Availability(ctx context.Context) (*Availability, error) {
	endpoint := c.baseURL + "/availability"
	status, body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", status, endpoint)
	}

	var avail Availability
	if err := xml.Unmarshal(body, &avail); err != nil {
		return nil, fmt.Errorf("tap: parsing availability from %s: %w", endpoint, err)
	}
	return &avail, nil
}
