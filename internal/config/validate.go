package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"dataprep/internal/codec"
	"dataprep/pkg/frame"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "source.file.path",
// "transform[1].options.column"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// CleanedTable is the export name of the table produced by the transform and
// finalize chains.
const CleanedTable = "cleaned"

// ProfileTable is the export name of the column profile of the cleaned
// table.
const ProfileTable = "profile"

// EncodingPrefix prefixes the export names of label encodings.
const EncodingPrefix = "encoding."

// transformKinds lists the accepted transform kinds with the options each one
// requires. Aliases map to the same requirements.
var transformKinds = map[string][]string{
	"normalize":       nil,
	"dedupe":          nil,
	"dedup":           nil,
	"drop_duplicates": nil,
	"drop_columns":    {"columns"},
	"drop":            {"columns"},
	"prune":           {"columns"},
	"dropna":          nil,
	"require":         nil,
	"drop_missing":    nil,
	"fillna":          {"column", "value"},
	"fill_constant":   {"column", "value"},
	"fill_mean":       {"column"},
	"label_encode":    {"column"},
	"encode":          {"column"},
	"filter":          {"column", "equals"},
	"sort":            {"column"},
	"coerce":          {"types"},
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Callers may decide whether to treat
// warnings as fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	issues = append(issues, validateStruct(p)...)
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateTransforms("transform", p.Transform)...)
	issues = append(issues, validateReports(p.Reports)...)
	issues = append(issues, validateTransforms("finalize", p.Finalize)...)
	issues = append(issues, validateExports(p)...)
	issues = append(issues, validateLogging(p.Logging)...)

	if len(p.Transform) == 0 && len(p.Finalize) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "transform",
			Message:  "no transforms configured; the loaded table is exported as-is",
		})
	}
	if len(p.Exports) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "exports",
			Message:  "no exports configured; results are only logged",
		})
	}
	return issues
}

// validateStruct runs the validate tags of the pipeline types.
func validateStruct(p Pipeline) []Issue {
	err := structValidator.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Severity: SeverityError, Path: "", Message: err.Error()}}
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     strings.TrimPrefix(fe.Namespace(), "Pipeline."),
			Message:  fieldMessage(fe),
		})
	}
	return issues
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func validateSource(s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
	}

	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a non-empty path",
			})
		}
		if s.File.Compression != "" {
			if _, err := codec.Parse(s.File.Compression); err != nil {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     "source.file.compression",
					Message:  err.Error(),
				})
			}
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q", s.Kind),
		})
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  "parser.kind must not be empty",
		})
	}
	if p.Kind != "csv" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unknown parser kind %q", p.Kind),
		})
	}

	if _, ok := p.Options.Delimiter("comma", ','); !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  "comma must be a single character or one of tab, comma, semicolon, pipe, space",
		})
	}
	if p.Options.Int("index_column", 0) < -1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.index_column",
			Message:  "index_column must be a column position or -1 for none",
		})
	}
	if p.Options.Bool("lenient", false) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parser.options.lenient",
			Message:  "lenient parsing silently drops malformed rows",
		})
	}
	return issues
}

func validateTransforms(section string, ts []Transform) []Issue {
	var issues []Issue
	for i, t := range ts {
		path := fmt.Sprintf("%s[%d]", section, i)
		if strings.TrimSpace(t.Kind) == "" {
			// Reported by the struct tags.
			continue
		}
		required, ok := transformKinds[t.Kind]
		if !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".kind",
				Message:  fmt.Sprintf("unknown transform kind %q", t.Kind),
			})
			continue
		}
		for _, key := range required {
			if t.Options.Any(key) == nil {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     fmt.Sprintf("%s.options.%s", path, key),
					Message:  fmt.Sprintf("%s transform requires option %q", t.Kind, key),
				})
			}
		}
		if t.Kind == "sort" {
			if _, err := frame.ParseOrder(t.Options.String("order", "")); err != nil {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".options.order",
					Message:  err.Error(),
				})
			}
		}
	}
	return issues
}

func validateReports(rs []Report) []Issue {
	var issues []Issue
	seen := map[string]int{}
	for i, r := range rs {
		path := fmt.Sprintf("reports[%d]", i)
		if r.Name != "" {
			if j, dup := seen[r.Name]; dup {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".name",
					Message:  fmt.Sprintf("report name %q already used by reports[%d]", r.Name, j),
				})
			}
			seen[r.Name] = i
			if r.Name == CleanedTable || r.Name == ProfileTable || strings.HasPrefix(r.Name, EncodingPrefix) {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".name",
					Message:  fmt.Sprintf("report name %q is reserved", r.Name),
				})
			}
		}
		for k, key := range r.GroupBy {
			if slices.Contains(r.GroupBy[:k], key) {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     fmt.Sprintf("%s.group_by[%d]", path, k),
					Message:  fmt.Sprintf("group_by column %q listed twice", key),
				})
			}
		}

		switch {
		case r.SelectRow != nil:
			if len(r.GroupBy) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".group_by",
					Message:  "select_row requires group_by",
				})
			}
			if len(r.Reducers) > 0 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".reducers",
					Message:  "reducers and select_row are mutually exclusive",
				})
			}
		case len(r.GroupBy) > 0:
			if r.Column == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".column",
					Message:  "grouped report requires a column to aggregate",
				})
			}
			if len(r.Reducers) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".reducers",
					Message:  "grouped report requires at least one reducer or select_row",
				})
			}
		default:
			if r.Column == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".column",
					Message:  "report without group_by summarizes column, which is empty",
				})
			}
		}
		if r.SelectRow == nil {
			for j, name := range r.Reducers {
				if _, err := frame.ParseReducer(name); err != nil {
					issues = append(issues, Issue{
						Severity: SeverityError,
						Path:     fmt.Sprintf("%s.reducers[%d]", path, j),
						Message:  err.Error(),
					})
				}
			}
		}
	}
	return issues
}

// exportTables returns the table names a pipeline makes available to exports.
func exportTables(p Pipeline) map[string]bool {
	names := map[string]bool{CleanedTable: true, ProfileTable: true}
	for _, r := range p.Reports {
		names[r.Name] = true
	}
	for _, t := range append(append([]Transform{}, p.Transform...), p.Finalize...) {
		if t.Kind == "label_encode" || t.Kind == "encode" {
			if c := t.Options.String("column", ""); c != "" {
				names[EncodingPrefix+c] = true
			}
		}
	}
	return names
}

func validateExports(p Pipeline) []Issue {
	var issues []Issue
	tables := exportTables(p)
	for i, e := range p.Exports {
		path := fmt.Sprintf("exports[%d]", i)
		if e.Table != "" && !tables[e.Table] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".table",
				Message:  fmt.Sprintf("unknown table %q; use %q, %q, a report name or %s<column>", e.Table, CleanedTable, ProfileTable, EncodingPrefix),
			})
		}
		switch e.Kind {
		case "csv", "xlsx":
			if strings.TrimSpace(e.Path) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".path",
					Message:  e.Kind + " export requires a non-empty path",
				})
			}
			if e.Compression != "" {
				if _, err := codec.Parse(e.Compression); err != nil {
					issues = append(issues, Issue{
						Severity: SeverityError,
						Path:     path + ".compression",
						Message:  err.Error(),
					})
				}
			}
		case "db":
			issues = append(issues, validateStorage(path+".storage", e.Storage)...)
		}
	}
	return issues
}

func validateStorage(path string, s Storage) []Issue {
	var issues []Issue
	switch s.Kind {
	case "sqlite", "postgres":
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".kind",
			Message:  "storage.kind must not be empty",
		})
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".kind",
			Message:  fmt.Sprintf("unknown storage kind %q; use sqlite or postgres", s.Kind),
		})
	}
	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	if strings.TrimSpace(s.DB.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".db.table",
			Message:  "storage.db.table must not be empty",
		})
	}
	return issues
}

func validateLogging(l Logging) []Issue {
	if (l.Output == "file" || l.Output == "both") && strings.TrimSpace(l.FilePath) == "" {
		return []Issue{{
			Severity: SeverityError,
			Path:     "logging.file_path",
			Message:  fmt.Sprintf("output %q requires file_path", l.Output),
		}}
	}
	return nil
}
