package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jokarl/lintscope/lint"
	"gopkg.in/yaml.v3"
)

func decodeYAML(src []byte, filename string) (*document, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &document{}, nil
		}
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	for id, issue := range doc.Issues {
		if issue == nil {
			issue = &issueDoc{}
			doc.Issues[id] = issue
		}
		issue.ID = id
	}
	return &doc, nil
}

// ParseYAML parses a YAML directive file. filename is only used in error
// messages.
func ParseYAML(src []byte, filename string, reg *lint.Registry) (lint.Directives, error) {
	doc, err := decodeYAML(src, filename)
	if err != nil {
		return lint.Directives{}, err
	}
	return doc.toDirectives(reg)
}

// EncodeYAML renders d as a YAML directive file.
func EncodeYAML(d lint.Directives) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fromDirectives(d)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
