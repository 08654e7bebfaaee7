package main

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/yamitzky/xlwt-go/xlwt"
)

// ruleFile is the YAML document read by the encode command.
type ruleFile struct {
	Sheet       string         `yaml:"sheet"`
	Datemode    int            `yaml:"datemode"`
	Names       map[string]int `yaml:"names"`
	Validations []ruleSpec     `yaml:"validations"`
}

// ruleSpec is one entry of the validations list. Value and Maximum may be
// a scalar formula or a list of literal strings.
type ruleSpec struct {
	Cells    string    `yaml:"cells"`
	Validate string    `yaml:"validate"`
	Criteria string    `yaml:"criteria"`
	Value    yaml.Node `yaml:"value"`
	Maximum  yaml.Node `yaml:"maximum"`

	InputTitle   string `yaml:"input_title"`
	InputMessage string `yaml:"input_message"`
	ErrorTitle   string `yaml:"error_title"`
	ErrorMessage string `yaml:"error_message"`
	ErrorType    string `yaml:"error_type"`

	IgnoreBlank *bool `yaml:"ignore_blank"`
	Dropdown    *bool `yaml:"dropdown"`
	ShowInput   *bool `yaml:"show_input"`
	ShowError   *bool `yaml:"show_error"`
}

func parseRuleFile(content []byte) (*ruleFile, error) {
	var rules ruleFile
	if err := yaml.Unmarshal(content, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rule file: %w", err)
	}
	if rules.Sheet == "" {
		rules.Sheet = "Sheet1"
	}
	if rules.Datemode != 0 && rules.Datemode != 1 {
		return nil, fmt.Errorf("datemode must be 0 or 1, got %d", rules.Datemode)
	}
	return &rules, nil
}

// apply adds every rule to the sheet, stopping at the first bad one.
func (r *ruleFile) apply(sheet *xlwt.Sheet) error {
	for i, spec := range r.Validations {
		opts, err := spec.options()
		if err == nil {
			err = sheet.DataValidation(spec.Cells, opts)
		}
		if err != nil {
			return fmt.Errorf("validation %d (%s): %w", i+1, spec.Cells, err)
		}
	}
	return nil
}

func (s *ruleSpec) options() (xlwt.DataValidationOptions, error) {
	opts := xlwt.DataValidationOptions{
		InputTitle:   s.InputTitle,
		InputMessage: s.InputMessage,
		ErrorTitle:   s.ErrorTitle,
		ErrorMessage: s.ErrorMessage,
		IgnoreBlank:  s.IgnoreBlank,
		Dropdown:     s.Dropdown,
		ShowInput:    s.ShowInput,
		ShowError:    s.ShowError,
	}

	var err error
	if s.Validate == "" {
		return opts, fmt.Errorf("validate is required")
	}
	if opts.Validate, err = xlwt.ValidationTypeFromName(s.Validate); err != nil {
		return opts, err
	}
	if s.Criteria != "" {
		if opts.Criteria, err = xlwt.CriteriaFromName(s.Criteria); err != nil {
			return opts, err
		}
	}
	if s.ErrorType != "" {
		if opts.ErrorType, err = xlwt.ErrorStyleFromName(s.ErrorType); err != nil {
			return opts, err
		}
	}
	if opts.Value, err = formulaFromNode("value", &s.Value); err != nil {
		return opts, err
	}
	if opts.Maximum, err = formulaFromNode("maximum", &s.Maximum); err != nil {
		return opts, err
	}
	return opts, nil
}

// formulaFromNode turns a YAML scalar into a formula and a YAML sequence
// into a list of literals.
func formulaFromNode(field string, node *yaml.Node) (xlwt.FormulaValue, error) {
	switch node.Kind {
	case 0:
		return xlwt.EmptyFormula(), nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return xlwt.EmptyFormula(), nil
		}
		return xlwt.ScalarFormula(node.Value), nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return xlwt.FormulaValue{}, fmt.Errorf("%s: line %d: list items must be scalars", field, item.Line)
			}
			items = append(items, item.Value)
		}
		return xlwt.ListFormula(items...), nil
	}
	return xlwt.FormulaValue{}, fmt.Errorf("%s: line %d: expected a scalar or a list", field, node.Line)
}
