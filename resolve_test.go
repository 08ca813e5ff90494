package regtap

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

var describeResourceDoc = regDoc(
	[]col{
		{"ivoid", "char"}, {"res_type", "char"}, {"short_name", "char"},
		{"res_title", "char"}, {"res_description", "char"}, {"waveband", "char"},
		{"reference_url", "char"}, {"creator_seq", "char"}, {"content_level", "char"},
		{"created", "char"}, {"updated", "char"},
	},
	[][]string{{
		"ivo://nasa.heasarc/rosmaster", "vs:catalogservice", "ROSMASTER",
		"ROSAT Master Catalog", "Log of pointed ROSAT observations", "x-ray#optical",
		"https://heasarc.gsfc.nasa.gov/rosmaster.html", "Voges, W.; ROSAT Team", "research",
		"2000-10-03T00:00:00", "2024-01-15T09:30:00",
	}},
)

var describeCapsCols = []col{
	{"ivoid", "char"}, {"cap_index", "int"}, {"cap_type", "char"},
	{"cap_description", "char"}, {"standard_id", "char"},
	{"intf_index", "int"}, {"intf_type", "char"}, {"intf_role", "char"},
	{"std_version", "char"}, {"access_url", "char"}, {"url_use", "char"},
}

// describeCapsDoc carries a cone search capability, a plain web page,
// and a versioned image service.
var describeCapsDoc = regDoc(describeCapsCols, [][]string{
	{
		"ivo://nasa.heasarc/rosmaster", "1", "conesearch", "Cone search on the observation log",
		"ivo://ivoa.net/std/conesearch", "1", "vs:paramhttp", "std", "1.03",
		"https://heasarc.gsfc.nasa.gov/cone?table=rosmaster", "base",
	},
	{
		"ivo://nasa.heasarc/rosmaster", "2", "webbrowser", "Query form",
		"", "1", "vr:webbrowser", "", "",
		"https://heasarc.gsfc.nasa.gov/rosmaster-form", "full",
	},
	{
		"ivo://nasa.heasarc/rosmaster", "3", "sia", "Pointed image archive",
		"ivo://ivoa.net/std/sia#query-2.0", "1", "vs:paramhttp", "std", "2.0",
		"https://heasarc.gsfc.nasa.gov/sia/rosmaster", "base",
	},
})

var rolesDoc = regDoc(
	[]col{{"role_name", "char"}, {"base_role", "char"}, {"email", "char"}},
	[][]string{
		{"Voges, W.", "Creator", ""},
		{"NASA/GSFC HEASARC", "publisher", "heasarc@athena.gsfc.nasa.gov"},
		{"", "contact", "nobody@example.org"},
	},
)

var subjectsDoc = regDoc(
	[]col{{"res_subject", "char"}},
	[][]string{{"X-ray sources"}, {"Surveys"}, {"X-ray sources"}, {"  "}},
)

var relationshipsDoc = regDoc(
	[]col{{"relationship_type", "char"}, {"related_id", "char"}, {"related_name", "char"}},
	[][]string{
		{"Served-By", "ivo://nasa.heasarc/services/browse", "HEASARC Browse"},
		{"", "", ""},
	},
)

// describeRules wires a complete record into the fake registry.
func describeRules() []fakeRule {
	return []fakeRule{
		{match: "FROM rr.resource WHERE", body: describeResourceDoc},
		{match: "FROM rr.capability", body: describeCapsDoc},
		{match: "FROM rr.res_role", body: rolesDoc},
		{match: "FROM rr.res_subject", body: subjectsDoc},
		{match: "FROM rr.relationship", body: relationshipsDoc},
	}
}

// =============================================================================
// Describe
// =============================================================================

// TestDescribe_FullRecord tests the assembled resource
func TestDescribe_FullRecord(t *testing.T) {
	reg := newFakeRegistry(describeRules()...)
	defer reg.Close()

	c, err := New(WithEndpoints(reg.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := c.Describe(context.Background(), "ivo://nasa.heasarc/rosmaster")
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	if res.Title != "ROSAT Master Catalog" {
		t.Errorf("Title = %q", res.Title)
	}
	if !reflect.DeepEqual(res.Wavebands, []string{"x-ray", "optical"}) {
		t.Errorf("Wavebands = %v", res.Wavebands)
	}
	if !reflect.DeepEqual(res.Creators, []string{"Voges, W.", "ROSAT Team"}) {
		t.Errorf("Creators = %v", res.Creators)
	}
	if res.ContentLevel != "research" {
		t.Errorf("ContentLevel = %q", res.ContentLevel)
	}
	if len(res.Capabilities) != 3 {
		t.Fatalf("Expected 3 capabilities, got %d", len(res.Capabilities))
	}
	if res.Capabilities[1].Interfaces[0].URLUse != "full" {
		t.Errorf("web capability = %+v", res.Capabilities[1])
	}

	if len(res.Roles) != 2 {
		t.Fatalf("Expected 2 roles (blank names dropped), got %v", res.Roles)
	}
	if res.Roles[0].Base != "creator" {
		t.Errorf("role base should be lowercased, got %q", res.Roles[0].Base)
	}
	if !reflect.DeepEqual(res.Subjects, []string{"Surveys", "X-ray sources"}) {
		t.Errorf("Subjects = %v", res.Subjects)
	}
	if len(res.Relationships) != 1 {
		t.Fatalf("Relationships = %v", res.Relationships)
	}
	rel := res.Relationships[0]
	if rel.Type != "served-by" || rel.RelatedIVOID != "ivo://nasa.heasarc/services/browse" {
		t.Errorf("relationship = %+v", rel)
	}
}

// TestDescribe_NotFound tests the missing-record error
func TestDescribe_NotFound(t *testing.T) {
	reg := newFakeRegistry()
	defer reg.Close()

	c, err := New(WithEndpoints(reg.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = c.Describe(context.Background(), "ivo://nasa.heasarc/nothere")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

// TestDescribe_BadIdentifier tests input validation
func TestDescribe_BadIdentifier(t *testing.T) {
	reg := newFakeRegistry()
	defer reg.Close()

	c, err := New(WithEndpoints(reg.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := c.Describe(context.Background(), "not an ivoid"); err == nil {
		t.Error("Describe should reject malformed identifiers")
	}
	if reg.queryCount() != 0 {
		t.Error("no query should reach the registry")
	}
}

// TestDescribe_EnrichmentFailuresIgnored tests the fail-open side queries
func TestDescribe_EnrichmentFailuresIgnored(t *testing.T) {
	rules := []fakeRule{
		{match: "FROM rr.res_role", status: 500, body: "boom"},
		{match: "FROM rr.resource WHERE", body: describeResourceDoc},
		{match: "FROM rr.capability", body: describeCapsDoc},
		{match: "FROM rr.res_subject", body: subjectsDoc},
		{match: "FROM rr.relationship", body: relationshipsDoc},
	}
	reg := newFakeRegistry(rules...)
	defer reg.Close()

	c, err := New(WithEndpoints(reg.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := c.Describe(context.Background(), "ivo://nasa.heasarc/rosmaster")
	if err != nil {
		t.Fatalf("Describe should tolerate side query failures: %v", err)
	}
	if res.Roles != nil {
		t.Errorf("Roles should be empty after the failed query, got %v", res.Roles)
	}
	if len(res.Subjects) == 0 {
		t.Error("Subjects should still be attached")
	}
}

// =============================================================================
// Service resolution
// =============================================================================

// TestResolveService_Found tests the happy path
func TestResolveService_Found(t *testing.T) {
	reg := newFakeRegistry(describeRules()...)
	defer reg.Close()

	c, err := New(WithEndpoints(reg.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	svc, err := c.ResolveService(context.Background(), "ivo://nasa.heasarc/rosmaster", ServiceConeSearch)
	if err != nil {
		t.Fatalf("ResolveService failed: %v", err)
	}

	if svc.BaseURL != "https://heasarc.gsfc.nasa.gov/cone?table=rosmaster" {
		t.Errorf("BaseURL = %q", svc.BaseURL)
	}
	if svc.Type != ServiceConeSearch {
		t.Errorf("Type = %q", svc.Type)
	}
	if svc.Version != "1.03" {
		t.Errorf("Version = %q", svc.Version)
	}
	if svc.Title != "ROSAT Master Catalog" {
		t.Errorf("Title = %q", svc.Title)
	}
}

// TestResolveService_VersionFragment tests fragment-insensitive matching
func TestResolveService_VersionFragment(t *testing.T) {
	reg := newFakeRegistry(describeRules()...)
	defer reg.Close()

	c, err := New(WithEndpoints(reg.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	svc, err := c.ResolveService(context.Background(), "ivo://nasa.heasarc/rosmaster", ServiceSIA)
	if err != nil {
		t.Fatalf("ResolveService failed: %v", err)
	}
	if svc.StandardID != "ivo://ivoa.net/std/sia#query-2.0" {
		t.Errorf("StandardID should keep the fragment, got %q", svc.StandardID)
	}
	if svc.BaseURL != "https://heasarc.gsfc.nasa.gov/sia/rosmaster" {
		t.Errorf("BaseURL = %q", svc.BaseURL)
	}
}

// TestResolveService_NoMatchingCapability tests the not-found error
func TestResolveService_NoMatchingCapability(t *testing.T) {
	reg := newFakeRegistry(describeRules()...)
	defer reg.Close()

	c, err := New(WithEndpoints(reg.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = c.ResolveService(context.Background(), "ivo://nasa.heasarc/rosmaster", ServiceSSA)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}

	var serr *ServiceError
	if !errors.As(err, &serr) {
		t.Fatalf("error should be a ServiceError, got %T", err)
	}
	if serr.Type != ServiceSSA {
		t.Errorf("ServiceError.Type = %q", serr.Type)
	}
}

// TestResolveService_NoStandardInterface tests the degenerate-capability error
func TestResolveService_NoStandardInterface(t *testing.T) {
	doc := regDoc(describeCapsCols, [][]string{{
		"ivo://nasa.heasarc/rosmaster", "1", "conesearch", "",
		"ivo://ivoa.net/std/conesearch", "1", "vr:webbrowser", "", "",
		"https://heasarc.gsfc.nasa.gov/rosmaster-form", "full",
	}})
	reg := newFakeRegistry(
		fakeRule{match: "FROM rr.resource WHERE", body: describeResourceDoc},
		fakeRule{match: "FROM rr.capability", body: doc},
	)
	defer reg.Close()

	c, err := New(WithEndpoints(reg.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = c.ResolveService(context.Background(), "ivo://nasa.heasarc/rosmaster", ServiceConeSearch)
	if !errors.Is(err, ErrNoStdInterface) {
		t.Errorf("got %v, want ErrNoStdInterface", err)
	}
}

// TestResolveService_UnknownType tests type validation
func TestResolveService_UnknownType(t *testing.T) {
	reg := newFakeRegistry()
	defer reg.Close()

	c, err := New(WithEndpoints(reg.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := c.ResolveService(context.Background(), "ivo://x/y", "teleport"); err == nil {
		t.Error("unknown service types should be rejected")
	}
	if reg.queryCount() != 0 {
		t.Error("no query should reach the registry")
	}
}

// TestAccessURL tests the convenience wrapper
func TestAccessURL(t *testing.T) {
	reg := newFakeRegistry(describeRules()...)
	defer reg.Close()

	c, err := New(WithEndpoints(reg.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	url, err := c.AccessURL(context.Background(), "ivo://nasa.heasarc/rosmaster", ServiceConeSearch)
	if err != nil {
		t.Fatalf("AccessURL failed: %v", err)
	}
	if url != "https://heasarc.gsfc.nasa.gov/cone?table=rosmaster" {
		t.Errorf("AccessURL = %q", url)
	}
}

// TestPickService_SkipsMalformedStandardIDs tests malformed standard identifiers are skipped
func TestPickService_SkipsMalformedStandardIDs(t *testing.T) {
	res := &Resource{IVOID: "ivo://example/cat", Title: "Catalog"}
	caps := []Capability{
		{StandardID: "not a standard id"},
		{
			StandardID: "ivo://ivoa.net/std/conesearch",
			Interfaces: []Interface{{Role: "std", AccessURL: "https://example.org/cone"}},
		},
	}

	svc, err := pickService(res, caps, ServiceConeSearch)
	if err != nil {
		t.Fatalf("pickService failed: %v", err)
	}
	if svc.BaseURL != "https://example.org/cone" {
		t.Errorf("BaseURL = %q", svc.BaseURL)
	}
}

// TestPickService_SkipsInterfacesWithoutURL tests interface selection
func TestPickService_SkipsInterfacesWithoutURL(t *testing.T) {
	res := &Resource{IVOID: "ivo://example/cat"}
	caps := []Capability{{
		StandardID: "ivo://ivoa.net/std/tap",
		Interfaces: []Interface{
			{Role: "std", AccessURL: ""},
			{Role: "std", AccessURL: "https://example.org/tap"},
		},
	}}

	svc, err := pickService(res, caps, ServiceTAP)
	if err != nil {
		t.Fatalf("pickService failed: %v", err)
	}
	if svc.BaseURL != "https://example.org/tap" {
		t.Errorf("BaseURL = %q", svc.BaseURL)
	}
}

// =============================================================================
// Relationships
// =============================================================================

// TestRelationships tests the standalone lookup
func TestRelationships(t *testing.T) {
	reg := newFakeRegistry(describeRules()...)
	defer reg.Close()

	c, err := New(WithEndpoints(reg.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	rels, err := c.Relationships(context.Background(), "IVO://NASA.HEASARC/ROSMASTER")
	if err != nil {
		t.Fatalf("Relationships failed: %v", err)
	}
	if len(rels) != 1 {
		t.Fatalf("Expected 1 relationship, got %d", len(rels))
	}
	if rels[0].Type != "served-by" {
		t.Errorf("Type = %q, want lowercased served-by", rels[0].Type)
	}
	if rels[0].RelatedName != "HEASARC Browse" {
		t.Errorf("RelatedName = %q", rels[0].RelatedName)
	}
}

// =============================================================================
// Batch enrichment
// =============================================================================

// TestEnrich_Batch tests in-place enrichment of several resources
func TestEnrich_Batch(t *testing.T) {
	reg := newFakeRegistry(describeRules()...)
	defer reg.Close()

	c, err := New(WithEndpoints(reg.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resources := []Resource{
		{IVOID: "ivo://nasa.heasarc/rosmaster"},
		{IVOID: "ivo://nasa.heasarc/chanmaster"},
	}
	c.Enrich(context.Background(), resources)

	for i, res := range resources {
		if len(res.Roles) != 2 {
			t.Errorf("resources[%d].Roles = %v", i, res.Roles)
		}
		if !reflect.DeepEqual(res.Subjects, []string{"Surveys", "X-ray sources"}) {
			t.Errorf("resources[%d].Subjects = %v", i, res.Subjects)
		}
		if len(res.Relationships) != 1 {
			t.Errorf("resources[%d].Relationships = %v", i, res.Relationships)
		}
	}
}

// TestEnrich_AspectFilter tests that only the named aspects are fetched
func TestEnrich_AspectFilter(t *testing.T) {
	reg := newFakeRegistry(describeRules()...)
	defer reg.Close()

	c, err := New(WithEndpoints(reg.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resources := []Resource{
		{IVOID: "ivo://nasa.heasarc/rosmaster"},
		{IVOID: "ivo://nasa.heasarc/chanmaster"},
	}
	c.Enrich(context.Background(), resources, AspectSubjects)

	for i, res := range resources {
		if len(res.Subjects) == 0 {
			t.Errorf("resources[%d].Subjects should be filled", i)
		}
		if res.Roles != nil || res.Relationships != nil {
			t.Errorf("resources[%d] fetched unrequested aspects: %+v", i, res)
		}
	}
	if got := reg.queryCount(); got != len(resources) {
		t.Errorf("queryCount = %d, want one subject query per resource", got)
	}
}

// TestEnrich_Empty tests the no-op cases
func TestEnrich_Empty(t *testing.T) {
	reg := newFakeRegistry()
	defer reg.Close()

	c, err := New(WithEndpoints(reg.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	c.Enrich(context.Background(), nil)
	if reg.queryCount() != 0 {
		t.Error("no resources should mean no queries")
	}
}
