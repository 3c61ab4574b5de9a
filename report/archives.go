package report

import (
	"github.com/cirocosta/snapper/snapshot"
	"github.com/cirocosta/snapper/store"
)

type ArchivesV1 struct {
	Kind string             `yaml:"kind"`
	Data []snapshot.Archive `yaml:"data"`
}

func NewArchivesV1(archives []snapshot.Archive) ArchivesV1 {
	if archives == nil {
		archives = []snapshot.Archive{}
	}

	return ArchivesV1{
		Kind: ArchivesV1Kind,
		Data: archives,
	}
}

type Member struct {
	Name      string `yaml:"name"`
	LineCount int    `yaml:"line_count"`
	Content   string `yaml:"content,omitempty"`
}

type Members struct {
	Archive snapshot.Archive `yaml:"archive"`
	Members []Member         `yaml:"members"`
}

type MembersV1 struct {
	Kind string  `yaml:"kind"`
	Data Members `yaml:"data"`
}

// NewMembersV1 describes the members of a stored archive. Contents are only
// included when `withContent` is set.
//
func NewMembersV1(summary snapshot.Archive, records []store.Record, withContent bool) MembersV1 {
	members := []Member{}

	for _, record := range records {
		if record.IsMetadata() {
			continue
		}

		member := Member{
			Name:      record.Member,
			LineCount: record.LineCount,
		}

		if withContent {
			member.Content = record.Content
		}

		members = append(members, member)
	}

	return MembersV1{
		Kind: MembersV1Kind,
		Data: Members{
			Archive: summary,
			Members: members,
		},
	}
}
