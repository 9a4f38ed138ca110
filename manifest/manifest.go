// Package manifest loads labeled image lists.
//
// A manifest is a plain-text file with one sample per line:
//
//	<relative-path> <race> <gender> <age> <recognition-id>
//
// Load selects one attribute column, drops rows whose label falls outside
// the attribute's valid range, and computes the label-space size over the
// surviving rows. Filtering happens before any sample I/O.
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// maskSuffix replaces the sample's 4-character file extension when a mask
// root is configured.
const maskSuffix = "_mask.png"

// ErrUnknownAttribute is returned for selectors outside the fixed attribute set.
var ErrUnknownAttribute = errors.New("unknown attribute")

// ParseError reports a malformed manifest row.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ParseError struct {
	Path  string
	Line  int
	cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("manifest %s: line %d: %v", e.Path, e.Line, e.cause)
}

func (e *ParseError) Unwrap() error { return e.cause }

// Entry is one filtered manifest row.
type Entry struct {
	// Sample is the image path, rooted at the source root if one was given.
	Sample string
	// Label is the selected attribute's value, validated against the
	// attribute's range.
	Label int
	// Mask is the derived mask path. Empty when masks are not configured.
	Mask string
}

// Manifest is the filtered, ordered view of an image list.
type Manifest struct {
	// Entries preserves the source file's row order.
	Entries []Entry
	// ClassNum is the label-space size computed over the filtered labels:
	// max(label)+1, except for the age attribute where it is max(label).
	ClassNum int
}

type options struct {
	sourceRoot string
	maskRoot   string
}

// Option configures Load.
type Option func(*options)

// WithSourceRoot rewrites sample references to paths under root.
func WithSourceRoot(root string) Option {
	return func(o *options) { o.sourceRoot = root }
}

// WithMaskRoot derives a mask path for every sample by joining root with the
// sample's relative path and replacing its extension with "_mask.png".
//
// Masks are only derived when a source root is also configured.
func WithMaskRoot(root string) Option {
	return func(o *options) { o.maskRoot = root }
}

// Load parses the image list at path and returns the filtered manifest for
// the chosen attribute.
//
// Rows whose selected label is negative, or above the attribute's maximum,
// are dropped. Rows that are structurally malformed (missing columns,
// non-integer labels) fail the whole load with a ParseError.
func Load(path string, attr Attribute, optFns ...Option) (*Manifest, error) {
	spec, ok := attributes[attr]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, attr)
	}

	var o options
	for _, fn := range optFns {
		fn(&o)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	m := &Manifest{}
	maxLabel := -1

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) <= spec.column {
			return nil, &ParseError{Path: path, Line: line,
				cause: fmt.Errorf("expected at least %d columns, got %d", spec.column+1, len(fields))}
		}

		// Every label column must be an integer for filtering to apply
		// uniformly, not just the selected one.
		labels := make([]int, len(fields)-1)
		for i, field := range fields[1:] {
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, &ParseError{Path: path, Line: line,
					cause: fmt.Errorf("column %d: %w", i+1, err)}
			}
			labels[i] = v
		}

		label := labels[spec.column-1]
		if label < 0 {
			continue
		}
		if spec.maxLabel >= 0 && label > spec.maxLabel {
			continue
		}
		if label > maxLabel {
			maxLabel = label
		}

		e, err := o.entry(fields[0], label)
		if err != nil {
			return nil, &ParseError{Path: path, Line: line, cause: err}
		}
		m.Entries = append(m.Entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Path: path, Line: line, cause: err}
	}

	if len(m.Entries) > 0 {
		if attr == AttributeAge {
			m.ClassNum = maxLabel
		} else {
			m.ClassNum = maxLabel + 1
		}
	}

	return m, nil
}

func (o *options) entry(name string, label int) (Entry, error) {
	e := Entry{Sample: name, Label: label}
	if o.sourceRoot == "" {
		return e, nil
	}

	e.Sample = filepath.Join(o.sourceRoot, name)
	if o.maskRoot != "" {
		mask := filepath.Join(o.maskRoot, name)
		// The extension is assumed to be exactly 4 characters (".jpg",
		// ".png"), matching the mask naming convention of the datasets
		// this tool ingests.
		if len(mask) <= 4 {
			return Entry{}, fmt.Errorf("sample %q too short to derive a mask path", name)
		}
		e.Mask = mask[:len(mask)-4] + maskSuffix
	}
	return e, nil
}
