// Package keys builds the Redis/Valkey key layout shared by the repositories.
//
//	vitrine:exhibits                          set of exhibit ids
//	vitrine:exhibit:slug:<slug>               slug claim, value is the exhibit id
//	vitrine:exhibit:{<id>}                    exhibit hash
//	vitrine:exhibit:{<id>}:searches           set of saved search ids
//	vitrine:exhibit:{<id>}:search:<searchID>  saved search hash
//	vitrine:exhibit:{<id>}:home               home page hash
//
// Every per-exhibit key carries the exhibit id as a cluster hash tag, so the
// keys one transaction watches and writes always live in the same slot.
package keys

import (
	"fmt"

	"github.com/kailas-cloud/vitrine/internal/domain"
)

// Exhibits is the set of all exhibit ids.
func Exhibits() string {
	return domain.KeyPrefix + "exhibits"
}

// Exhibit is the hash holding one exhibit.
func Exhibit(id string) string {
	return fmt.Sprintf("%sexhibit:{%s}", domain.KeyPrefix, id)
}

// Slug maps a slug to the exhibit id that claimed it.
func Slug(slug string) string {
	return fmt.Sprintf("%sexhibit:slug:%s", domain.KeyPrefix, slug)
}

// Searches is the set of saved search ids of an exhibit.
func Searches(exhibitID string) string {
	return Exhibit(exhibitID) + ":searches"
}

// Search is the hash holding one saved search.
func Search(exhibitID, id string) string {
	return Exhibit(exhibitID) + ":search:" + id
}

// HomePage is the hash holding an exhibit's home page.
func HomePage(exhibitID string) string {
	return Exhibit(exhibitID) + ":home"
}
