package regtap

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/openvo/go-regtap/adql"
	"github.com/openvo/go-regtap/ivoid"
	"github.com/openvo/go-regtap/votable"
)

// searchColumns is the column set for searches: one row per standard
// interface, grouped back into resources afterwards.
var searchColumns = []string{
	"ivoid", "res_type", "short_name", "res_title", "res_description",
	"waveband", "reference_url", "created", "updated",
	"cap_index", "cap_type", "cap_description", "standard_id",
	"intf_index", "intf_type", "intf_role", "std_version",
	"access_url", "url_use",
}

// Constraints narrows a registry search. Set fields compose with AND;
// zero-valued fields do not constrain. At least one field must be set.
type Constraints struct {
	// Keywords match against resource titles and descriptions.
	// Every keyword must match.
	Keywords []string

	// Type restricts matches to resources publishing a capability of
	// the given protocol family.
	Type ServiceType

	// Waveband restricts matches to resources covering the band.
	// Must be one of the terms in Wavebands.
	Waveband string

	// Subject matches against the record's topic keywords.
	Subject string

	// Author matches against creator names.
	Author string

	// IVOID restricts the search to a single identifier.
	IVOID string

	// DataModel restricts matches to services exposing the named data
	// model, e.g. "obscore".
	DataModel string
}

// IsEmpty reports whether no field constrains the search.
func (c Constraints) IsEmpty() bool {
	return len(c.Keywords) == 0 &&
		c.Type == "" &&
		c.Waveband == "" &&
		c.Subject == "" &&
		c.Author == "" &&
		c.IVOID == "" &&
		c.DataModel == ""
}

// Validate checks the constraint values without touching the network.
func (c Constraints) Validate() error {
	if c.IsEmpty() {
		return ErrEmptyConstraints
	}
	if c.Type != "" && !c.Type.Valid() {
		return fmt.Errorf("unknown service type %q", c.Type)
	}
	if c.Waveband != "" && !ValidWaveband(c.Waveband) {
		return fmt.Errorf("unknown waveband %q: known values are %s",
			c.Waveband, strings.Join(Wavebands, ", "))
	}
	if c.IVOID != "" {
		if _, err := ivoid.Parse(c.IVOID); err != nil {
			return err
		}
	}
	return nil
}

// standardIDFor maps a service type or alias to its standard identifier.
func standardIDFor(s ServiceType) (ivoid.IVOID, bool) {
	return ivoid.StandardID(string(s))
}

// buildSearchQuery renders constraints into registry ADQL.
func buildSearchQuery(cons Constraints) (string, error) {
	if err := cons.Validate(); err != nil {
		return "", err
	}

	b := adql.Select(searchColumns...).
		Distinct().
		From("rr.resource").
		NaturalJoin("rr.capability").
		NaturalJoin("rr.interface").
		Where(adql.Eq("intf_role", "std")).
		OrderBy("ivoid", "cap_index", "intf_index")

	for _, kw := range cons.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		b.Where(adql.Any(
			adql.ContainsWord("res_title", kw),
			adql.ContainsWord("res_description", kw),
		))
	}

	if cons.Type != "" {
		std, _ := standardIDFor(cons.Type)
		// Version fragments ("#query-2.0") hang off the base standard
		// identifier, so a prefix match catches all protocol versions.
		b.Where(adql.Like("standard_id", std.String()+"%"))
	}

	if cons.Waveband != "" {
		b.Where(adql.HasListItem("waveband", strings.ToLower(cons.Waveband)))
	}

	if cons.Subject != "" {
		b.NaturalJoin("rr.res_subject")
		b.Where(adql.ContainsWord("res_subject", cons.Subject))
	}

	if cons.Author != "" {
		b.NaturalJoin("rr.res_role")
		b.Where(adql.Eq("base_role", "creator"))
		b.Where(adql.ContainsWord("role_name", cons.Author))
	}

	if cons.IVOID != "" {
		id, err := ivoid.Parse(cons.IVOID)
		if err != nil {
			return "", err
		}
		b.Where(adql.Eq("ivoid", id.String()))
	}

	if cons.DataModel != "" {
		b.NaturalJoin("rr.res_detail")
		b.Where(adql.Eq("detail_xpath", "/capability/dataModel/@ivo-id"))
		b.Where(adql.CaseMatch("detail_value", "ivo://ivoa.net/std/"+strings.ToLower(cons.DataModel)+"%"))
	}

	return b.Build()
}

// Search finds registry resources matching the constraints. The rows
// coming back from the registry are grouped into resources with their
// capabilities and interfaces.
func (c *Client) Search(ctx context.Context, cons Constraints) (*SearchResult, error) {
	query, err := buildSearchQuery(cons)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("registry search", slog.String("query", query))

	table, endpoint, err := c.runQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Resources: groupResources(table),
		Endpoint:  endpoint,
		Query:     query,
		Overflow:  table.Overflow,
	}, nil
}

// groupResources folds interface-level rows back into resources.
// Rows arrive ordered by identifier, capability, and interface; the
// fold keys on values rather than order so unsorted answers still
// group correctly.
func groupResources(table *votable.Table) []Resource {
	var resources []Resource
	resIdx := make(map[string]int)
	capIdx := make(map[string]int)

	for i := 0; i < table.Len(); i++ {
		id := strings.ToLower(table.StringCell(i, "ivoid"))
		if id == "" {
			continue
		}

		ri, ok := resIdx[id]
		if !ok {
			resources = append(resources, resourceFromRow(table, i))
			ri = len(resources) - 1
			resIdx[id] = ri
		}
		res := &resources[ri]

		capIndex := intCell(table, i, "cap_index")
		capKey := id + "#" + strconv.Itoa(capIndex)
		ci, ok := capIdx[capKey]
		if !ok {
			res.Capabilities = append(res.Capabilities, capabilityFromRow(table, i))
			ci = len(res.Capabilities) - 1
			capIdx[capKey] = ci
		}

		if intf := interfaceFromRow(table, i); intf.AccessURL != "" || intf.Type != "" {
			res.Capabilities[ci].Interfaces = append(res.Capabilities[ci].Interfaces, intf)
		}
	}
	return resources
}

// resourceFromRow reads the resource-level columns of one row. Columns
// missing from the projection come back empty.
func resourceFromRow(t *votable.Table, row int) Resource {
	return Resource{
		IVOID:        strings.ToLower(t.StringCell(row, "ivoid")),
		Type:         t.StringCell(row, "res_type"),
		Title:        t.StringCell(row, "res_title"),
		ShortName:    t.StringCell(row, "short_name"),
		Description:  t.StringCell(row, "res_description"),
		Wavebands:    splitHashList(t.StringCell(row, "waveband")),
		ReferenceURL: t.StringCell(row, "reference_url"),
		Creators:     splitCreatorSeq(t.StringCell(row, "creator_seq")),
		ContentLevel: t.StringCell(row, "content_level"),
		Created:      parseRegistryTime(t.StringCell(row, "created")),
		Updated:      parseRegistryTime(t.StringCell(row, "updated")),
	}
}

// capabilityFromRow reads the capability-level columns of one row.
func capabilityFromRow(t *votable.Table, row int) Capability {
	return Capability{
		Index:       intCell(t, row, "cap_index"),
		Type:        t.StringCell(row, "cap_type"),
		StandardID:  strings.ToLower(t.StringCell(row, "standard_id")),
		Description: t.StringCell(row, "cap_description"),
	}
}

// interfaceFromRow reads the interface-level columns of one row.
func interfaceFromRow(t *votable.Table, row int) Interface {
	return Interface{
		Index:     intCell(t, row, "intf_index"),
		Type:      t.StringCell(row, "intf_type"),
		Role:      t.StringCell(row, "intf_role"),
		Version:   t.StringCell(row, "std_version"),
		AccessURL: strings.TrimSpace(t.StringCell(row, "access_url")),
		URLUse:    t.StringCell(row, "url_use"),
	}
}

// intCell reads an integer column regardless of the width the service
// chose for it. Registries disagree on whether index columns are
// shorts, ints, or even text.
func intCell(t *votable.Table, row int, name string) int {
	switch v := t.Cell(row, name).(type) {
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float32:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	default:
		return 0
	}
}
