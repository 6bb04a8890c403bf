package logfields

import "log/slog"

// Canonical log field names shared across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPage       = "page"
	KeySection    = "section"
	KeyOutput     = "output"
	KeyPath       = "path"
	KeyAuthorBio  = "author_bio"
	KeyPages      = "pages"
	KeyError      = "error"
)

func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Page(p string) slog.Attr         { return slog.String(KeyPage, p) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func AuthorBio(shown bool) slog.Attr  { return slog.Bool(KeyAuthorBio, shown) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
