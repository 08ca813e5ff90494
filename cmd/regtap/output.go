package main

import (
	"fmt"
	"os"
	"strings"

	regtap "github.com/openvo/go-regtap"
	"github.com/openvo/go-regtap/votable"
)

// printTable writes a decoded table in the selected output format.
func printTable(table *votable.Table) error {
	switch outputFormat {
	case "csv":
		return table.ToCSV(os.Stdout)
	case "json":
		data, err := table.ToJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	default:
		fmt.Print(table.ToText(cfg.Output.MaxRows))
		return nil
	}
}

// printSearchResult writes one row per resource, collapsing the
// capability detail down to the protocol families each resource speaks.
func printSearchResult(result *regtap.SearchResult) error {
	table := &votable.Table{
		Fields: []votable.Field{
			{Name: "ivoid", Datatype: "char"},
			{Name: "short_name", Datatype: "char"},
			{Name: "title", Datatype: "char"},
			{Name: "services", Datatype: "char"},
		},
	}
	for _, res := range result.Resources {
		table.Rows = append(table.Rows, []any{
			res.IVOID,
			res.ShortName,
			res.Title,
			strings.Join(serviceFamilies(res), " "),
		})
	}
	table.Overflow = result.Overflow

	if err := printTable(table); err != nil {
		return err
	}
	if outputFormat == "text" {
		fmt.Printf("\n%d resources (via %s)\n", result.Len(), result.Endpoint)
	}
	return nil
}

// serviceFamilies lists the protocol families among a resource's
// capabilities, deduplicated, in capability order.
func serviceFamilies(res regtap.Resource) []string {
	seen := make(map[regtap.ServiceType]struct{})
	var names []string
	for _, capability := range res.Capabilities {
		for _, st := range []regtap.ServiceType{
			regtap.ServiceConeSearch, regtap.ServiceSIA, regtap.ServiceSSA, regtap.ServiceTAP,
		} {
			if !matchesServiceType(capability.StandardID, st) {
				continue
			}
			if _, dup := seen[st]; !dup {
				seen[st] = struct{}{}
				names = append(names, string(st))
			}
		}
	}
	return names
}

// matchesServiceType reports whether a capability standard identifier
// belongs to the protocol family, ignoring version fragments.
func matchesServiceType(standardID string, st regtap.ServiceType) bool {
	id := strings.ToLower(strings.TrimSpace(standardID))
	if i := strings.IndexByte(id, '#'); i >= 0 {
		id = id[:i]
	}
	switch st {
	case regtap.ServiceConeSearch:
		return id == "ivo://ivoa.net/std/conesearch"
	case regtap.ServiceSIA:
		return id == "ivo://ivoa.net/std/sia"
	case regtap.ServiceSSA:
		return id == "ivo://ivoa.net/std/ssa"
	case regtap.ServiceTAP:
		return id == "ivo://ivoa.net/std/tap"
	}
	return false
}

// printResource writes the full record of one resource: the summary
// block, then its capabilities, roles, and subjects.
func printResource(res *regtap.Resource) {
	fmt.Printf("%s\n", res.Title)
	fmt.Printf("  ivoid:       %s\n", res.IVOID)
	if res.ShortName != "" {
		fmt.Printf("  short name:  %s\n", res.ShortName)
	}
	if res.Type != "" {
		fmt.Printf("  type:        %s\n", res.Type)
	}
	if len(res.Wavebands) > 0 {
		fmt.Printf("  wavebands:   %s\n", strings.Join(res.Wavebands, ", "))
	}
	if res.ReferenceURL != "" {
		fmt.Printf("  reference:   %s\n", res.ReferenceURL)
	}
	if !res.Updated.IsZero() {
		fmt.Printf("  updated:     %s\n", res.Updated.Format("2006-01-02"))
	}
	if res.Description != "" {
		fmt.Printf("\n%s\n", wrapText(res.Description, 76, "  "))
	}

	if len(res.Capabilities) > 0 {
		fmt.Printf("\nCapabilities:\n")
		for _, capability := range res.Capabilities {
			fmt.Printf("  [%d] %s\n", capability.Index, capability.StandardID)
			for _, intf := range capability.Interfaces {
				marker := " "
				if intf.IsStandard() {
					marker = "*"
				}
				fmt.Printf("    %s %s\n", marker, intf.AccessURL)
			}
		}
	}

	if len(res.Roles) > 0 {
		fmt.Printf("\nRoles:\n")
		for _, role := range res.Roles {
			line := fmt.Sprintf("  %-12s %s", role.Base, role.Name)
			if role.Email != "" {
				line += " <" + role.Email + ">"
			}
			fmt.Println(line)
		}
	}

	if len(res.Subjects) > 0 {
		fmt.Printf("\nSubjects: %s\n", strings.Join(res.Subjects, ", "))
	}

	if len(res.Relationships) > 0 {
		fmt.Printf("\nRelated:\n")
		for _, rel := range res.Relationships {
			fmt.Printf("  %-14s %s\n", rel.Type, rel.RelatedIVOID)
		}
	}
}

// wrapText folds s at word boundaries into lines of at most width
// characters, each prefixed with indent.
func wrapText(s string, width int, indent string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		switch {
		case i == 0:
			b.WriteString(indent)
			lineLen = len(word)
		case lineLen+1+len(word) > width:
			b.WriteString("\n")
			b.WriteString(indent)
			lineLen = len(word)
		default:
			b.WriteString(" ")
			lineLen += 1 + len(word)
		}
		b.WriteString(word)
	}
	return b.String()
}
