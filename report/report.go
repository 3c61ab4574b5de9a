// Package report holds the YAML documents that snapper emits. Every
// document carries a `kind` so that it can be told apart when read back.
//
package report

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	ArchivesV1Kind   = "archives/v1"
	MembersV1Kind    = "members/v1"
	ComparisonV1Kind = "comparison/v1"
	DiffV1Kind       = "diff/v1"
)

// ToYAML marshals a document.
//
func ToYAML(doc interface{}) (b []byte, err error) {
	b, err = yaml.Marshal(doc)
	if err != nil {
		err = errors.Wrapf(err,
			"failed marshalling document to yaml")
		return
	}

	return
}

// Decode reads back a document previously produced by ToYAML, returning a
// pointer to the type that its `kind` names.
//
func Decode(b []byte) (res interface{}, err error) {
	wrapper := struct {
		Kind string `yaml:"kind"`
	}{}

	err = yaml.Unmarshal(b, &wrapper)
	if err != nil {
		err = errors.Wrapf(err,
			"failed unmarshalling document kind")
		return
	}

	switch wrapper.Kind {
	case ArchivesV1Kind:
		res = &ArchivesV1{}
	case MembersV1Kind:
		res = &MembersV1{}
	case ComparisonV1Kind:
		res = &ComparisonV1{}
	case DiffV1Kind:
		res = &DiffV1{}
	default:
		err = errors.Errorf("unexpected kind %q", wrapper.Kind)
		return
	}

	err = yaml.Unmarshal(b, res)
	if err != nil {
		err = errors.Wrapf(err,
			"failed unmarshalling document of kind %s", wrapper.Kind)
		return
	}

	return
}
