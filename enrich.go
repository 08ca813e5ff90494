package regtap

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/openvo/go-regtap/adql"
	"github.com/openvo/go-regtap/ivoid"
	"github.com/openvo/go-regtap/votable"
)

// Aspect names one kind of enrichment data.
type Aspect string

// Enrichment aspects.
const (
	AspectRoles         Aspect = "roles"
	AspectSubjects      Aspect = "subjects"
	AspectRelationships Aspect = "relationships"
)

// enrichConcurrency bounds how many resources Enrich works on at once.
const enrichConcurrency = 4

// Enrich fills the enrichment fields of the given resources in place.
// With no aspects named, all of them are fetched. Search results are
// not enriched automatically; pass result.Resources here when the
// extra records are worth the extra queries.
//
// Enrichment is fail-open: a failed side query logs at debug level and
// leaves its slice empty, and Enrich itself never fails.
func (c *Client) Enrich(ctx context.Context, resources []Resource, aspects ...Aspect) {
	var g errgroup.Group
	g.SetLimit(enrichConcurrency)
	for i := range resources {
		i := i
		g.Go(func() error {
			c.enrich(ctx, &resources[i], aspects...)
			return nil
		})
	}
	_ = g.Wait()
}

// enrich fetches the selected side records for one resource,
// concurrently, and attaches whatever came back.
func (c *Client) enrich(ctx context.Context, res *Resource, aspects ...Aspect) {
	queries := map[Aspect]string{
		AspectRoles:         roleQuery(res.IVOID),
		AspectSubjects:      subjectQuery(res.IVOID),
		AspectRelationships: relationshipQuery(res.IVOID),
	}
	if len(aspects) > 0 {
		keep := make(map[Aspect]struct{}, len(aspects))
		for _, a := range aspects {
			keep[a] = struct{}{}
		}
		for kind := range queries {
			if _, ok := keep[kind]; !ok {
				delete(queries, kind)
			}
		}
	}

	type result struct {
		kind  Aspect
		table *votable.Table
		err   error
	}

	results := make(chan result, len(queries))
	var wg sync.WaitGroup

	for kind, query := range queries {
		wg.Add(1)
		go func(kind Aspect, query string) {
			defer wg.Done()
			table, _, err := c.runQuery(ctx, query)
			results <- result{kind: kind, table: table, err: err}
		}(kind, query)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if r.err != nil {
			c.logger.Debug("enrichment query failed",
				slog.String("kind", string(r.kind)),
				slog.String("ivoid", res.IVOID),
				slog.String("error", r.err.Error()))
			continue
		}
		switch r.kind {
		case AspectRoles:
			res.Roles = rolesFromTable(r.table)
		case AspectSubjects:
			res.Subjects = subjectsFromTable(r.table)
		case AspectRelationships:
			res.Relationships = relationshipsFromTable(r.table)
		}
	}
}

// Relationships fetches the links from one record to other registry
// records, such as the services that serve a data collection.
func (c *Client) Relationships(ctx context.Context, id string) ([]Relationship, error) {
	parsed, err := ivoid.Parse(id)
	if err != nil {
		return nil, err
	}

	table, _, err := c.runQuery(ctx, relationshipQuery(parsed.String()))
	if err != nil {
		return nil, err
	}
	return relationshipsFromTable(table), nil
}

// The side queries are structurally fixed, so they cannot fail to build.

func roleQuery(id string) string {
	return adql.Select("role_name", "base_role", "email").
		From("rr.res_role").
		Where(adql.Eq("ivoid", id)).
		OrderBy("base_role", "role_name").
		MustBuild()
}

func subjectQuery(id string) string {
	return adql.Select("res_subject").
		From("rr.res_subject").
		Where(adql.Eq("ivoid", id)).
		OrderBy("res_subject").
		MustBuild()
}

func relationshipQuery(id string) string {
	return adql.Select("relationship_type", "related_id", "related_name").
		From("rr.relationship").
		Where(adql.Eq("ivoid", id)).
		OrderBy("relationship_type", "related_id").
		MustBuild()
}

func rolesFromTable(t *votable.Table) []Role {
	roles := make([]Role, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		role := Role{
			Name:  t.StringCell(i, "role_name"),
			Base:  strings.ToLower(t.StringCell(i, "base_role")),
			Email: t.StringCell(i, "email"),
		}
		if role.Name == "" {
			continue
		}
		roles = append(roles, role)
	}
	if len(roles) == 0 {
		return nil
	}
	return roles
}

func subjectsFromTable(t *votable.Table) []string {
	seen := make(map[string]struct{}, t.Len())
	subjects := make([]string, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		s := strings.TrimSpace(t.StringCell(i, "res_subject"))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		subjects = append(subjects, s)
	}
	if len(subjects) == 0 {
		return nil
	}
	sort.Strings(subjects)
	return subjects
}

func relationshipsFromTable(t *votable.Table) []Relationship {
	rels := make([]Relationship, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		rel := Relationship{
			Type:         strings.ToLower(t.StringCell(i, "relationship_type")),
			RelatedIVOID: strings.ToLower(t.StringCell(i, "related_id")),
			RelatedName:  t.StringCell(i, "related_name"),
		}
		if rel.Type == "" && rel.RelatedIVOID == "" {
			continue
		}
		rels = append(rels, rel)
	}
	if len(rels) == 0 {
		return nil
	}
	return rels
}
