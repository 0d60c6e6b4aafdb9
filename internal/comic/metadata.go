package comic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"
)

// comicBookInfoKey is the top-level key of the ComicBookInfo comment schema.
const comicBookInfoKey = "ComicBookInfo/1.0"

// Metadata is the normalized book metadata.
// Empty fields other than Title are absent.
type Metadata struct {
	Title     string `json:"title" yaml:"title"`
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Language  string `json:"language,omitempty" yaml:"language,omitempty"`
	Author    string `json:"author,omitempty" yaml:"author,omitempty"`
	Published string `json:"published,omitempty" yaml:"published,omitempty"` // YYYY-MM
}

// MetadataSource records where a book's metadata came from.
type MetadataSource int

const (
	// SourceFallback means only the display name was available.
	SourceFallback MetadataSource = iota
	// SourceComment means the archive comment carried ComicBookInfo.
	SourceComment
)

func (s MetadataSource) String() string {
	switch s {
	case SourceComment:
		return "comment"
	default:
		return "fallback"
	}
}

// MetadataResult pairs extracted metadata with its source.
type MetadataResult struct {
	Metadata Metadata
	Source   MetadataSource
}

type comicBookInfo struct {
	Title            string        `json:"title"`
	Publisher        string        `json:"publisher"`
	Language         string        `json:"language"`
	Lang             string        `json:"lang"`
	Credits          []comicCredit `json:"credits"`
	PublicationYear  int           `json:"publicationYear"`
	PublicationMonth int           `json:"publicationMonth"`
}

type comicCredit struct {
	Person string `json:"person"`
	Role   string `json:"role"`
}

// ExtractMetadata reads ComicBookInfo from an archive comment.
// It never fails: when the comment is empty, malformed, or lacks the
// ComicBookInfo key, the result carries only the display name as title.
func ExtractMetadata(comment, displayName string) MetadataResult {
	info, ok := parseComicBookInfo(comment)
	if !ok {
		return MetadataResult{
			Metadata: Metadata{Title: displayName},
			Source:   SourceFallback,
		}
	}

	md := Metadata{
		Title:     info.Title,
		Publisher: info.Publisher,
		Language:  info.Language,
		Author:    formatCredits(info.Credits),
		Published: formatPublished(info.PublicationYear, info.PublicationMonth),
	}
	if md.Title == "" {
		md.Title = displayName
	}
	if md.Language == "" {
		md.Language = info.Lang
	}

	return MetadataResult{Metadata: md, Source: SourceComment}
}

func parseComicBookInfo(comment string) (comicBookInfo, bool) {
	var info comicBookInfo
	if strings.TrimSpace(comment) == "" {
		return info, false
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON([]byte(comment)), &doc); err != nil {
		return info, false
	}
	raw, ok := doc[comicBookInfoKey]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return info, false
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return info, false
	}
	return info, true
}

// formatCredits joins credits as "Person (Role)".
func formatCredits(credits []comicCredit) string {
	parts := make([]string, 0, len(credits))
	for _, c := range credits {
		if c.Role == "" {
			parts = append(parts, c.Person)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", c.Person, c.Role))
	}
	return strings.Join(parts, ", ")
}

// formatPublished returns "YYYY-MM", or "" unless both parts are known and the month is valid.
func formatPublished(year, month int) string {
	if year == 0 || month < 1 || month > 12 {
		return ""
	}
	return fmt.Sprintf("%d-%02d", year, month)
}
