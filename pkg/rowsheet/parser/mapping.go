package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/models"
	"gopkg.in/yaml.v3"
)

// ErrInvalidMapping indicates the mapping description is malformed or incomplete.
var ErrInvalidMapping = errors.New("invalid mapping")

// rawMapping mirrors the top level of a mapping document.
type rawMapping struct {
	ModelSheetName    string    `yaml:"modelSheetName"`
	GeneratedFileName string    `yaml:"generatedFileName"`
	Sheets            yaml.Node `yaml:"sheets"`
}

type rawEntry struct {
	Sheet *rawSheet `yaml:"sheet"`
}

type rawSheet struct {
	Name            string    `yaml:"name"`
	Domain          string    `yaml:"domain"`
	StartRow        *int      `yaml:"startRow"`
	StopRow         *int      `yaml:"stopRow"`
	ReferenceColumn string    `yaml:"referenceColumn"`
	RecordState     string    `yaml:"recordState"`
	Mapping         yaml.Node `yaml:"mapping"`
}

type rawField struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// keyedNode is one element of a sequence or mapping node, with its key
// (empty for sequences) and position.
type keyedNode struct {
	key   string
	index int
	node  *yaml.Node
}

func (k keyedNode) label(parent string) string {
	if k.key != "" {
		return fmt.Sprintf("%s[%s]", parent, k.key)
	}
	return fmt.Sprintf("%s[%d]", parent, k.index)
}

// ParseMapping parses a YAML mapping description.
// Sheets and field mappings may be declared as lists or as keyed mappings;
// declaration order is preserved in both cases.
func ParseMapping(data []byte) (*models.MappingConfig, error) {
	var raw rawMapping
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
	}

	cfg := &models.MappingConfig{
		ModelSheetName:    strings.TrimSpace(raw.ModelSheetName),
		GeneratedFileName: strings.TrimSpace(raw.GeneratedFileName),
	}
	if cfg.ModelSheetName == "" {
		return nil, invalidf("missing modelSheetName")
	}

	entries, err := elements(&raw.Sheets, "sheets")
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, invalidf("no sheets declared")
	}

	for _, e := range entries {
		spec, err := parseSheet(e)
		if err != nil {
			return nil, err
		}
		cfg.Sheets = append(cfg.Sheets, spec)
	}

	return cfg, nil
}

func parseSheet(e keyedNode) (models.SheetSpec, error) {
	label := e.label("sheets")

	var entry rawEntry
	if err := e.node.Decode(&entry); err != nil {
		return models.SheetSpec{}, invalidf("%s (line %d): %v", label, e.node.Line, err)
	}
	if entry.Sheet == nil {
		return models.SheetSpec{}, invalidf("%s (line %d): missing sheet object", label, e.node.Line)
	}
	rs := entry.Sheet

	spec := models.SheetSpec{
		Key:             e.key,
		SourceSheetName: strings.TrimSpace(rs.Name),
		TargetDomain:    rs.Domain,
		RecordState:     rs.RecordState,
	}

	if spec.SourceSheetName == "" {
		return spec, invalidf("%s: missing source sheet name", label)
	}
	if rs.StartRow == nil {
		return spec, invalidf("%s: missing startRow", label)
	}
	if *rs.StartRow < 1 {
		return spec, invalidf("%s: startRow must be at least 1, got %d", label, *rs.StartRow)
	}
	spec.StartRow = *rs.StartRow

	if rs.StopRow != nil {
		if *rs.StopRow < 1 {
			return spec, invalidf("%s: stopRow must be at least 1, got %d", label, *rs.StopRow)
		}
		spec.StopRow = *rs.StopRow
	}

	if strings.TrimSpace(rs.ReferenceColumn) == "" {
		return spec, invalidf("%s: missing referenceColumn", label)
	}
	col, err := ParseColumn(rs.ReferenceColumn)
	if err != nil {
		return spec, invalidf("%s: referenceColumn: %v", label, err)
	}
	spec.ReferenceColumn = col

	fields, err := elements(&rs.Mapping, label+".mapping")
	if err != nil {
		return spec, err
	}
	for _, f := range fields {
		fm, err := parseField(f, label+".mapping")
		if err != nil {
			return spec, err
		}
		spec.Fields = append(spec.Fields, fm)
	}

	return spec, nil
}

func parseField(e keyedNode, parent string) (models.FieldMapping, error) {
	label := e.label(parent)

	var rf rawField
	if err := e.node.Decode(&rf); err != nil {
		return models.FieldMapping{}, invalidf("%s (line %d): %v", label, e.node.Line, err)
	}

	fm := models.FieldMapping{Source: strings.TrimSpace(rf.Source)}
	if fm.Source == "" {
		return fm, invalidf("%s: missing source", label)
	}
	column, cell, err := parseSource(fm.Source)
	if err != nil {
		return fm, invalidf("%s: %v", label, err)
	}
	fm.SourceColumn, fm.SourceCell = column, cell

	if strings.TrimSpace(rf.Target) == "" {
		return fm, invalidf("%s: missing target", label)
	}
	if fm.Target, err = ParseCell(rf.Target); err != nil {
		return fm, invalidf("%s: target: %v", label, err)
	}

	return fm, nil
}

// elements flattens a sequence or mapping node into its values.
// An absent or null node has no elements.
func elements(n *yaml.Node, label string) ([]keyedNode, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return nil, invalidf("%s (line %d): expected a list or mapping", label, n.Line)
	case yaml.AliasNode:
		return elements(n.Alias, label)
	case yaml.SequenceNode:
		out := make([]keyedNode, 0, len(n.Content))
		for i, c := range n.Content {
			out = append(out, keyedNode{index: i, node: c})
		}
		return out, nil
	case yaml.MappingNode:
		out := make([]keyedNode, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if key == "" {
				key = strconv.Itoa(i / 2)
			}
			out = append(out, keyedNode{key: key, index: i / 2, node: n.Content[i+1]})
		}
		return out, nil
	default:
		return nil, invalidf("%s (line %d): expected a list or mapping", label, n.Line)
	}
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidMapping, fmt.Sprintf(format, args...))
}
