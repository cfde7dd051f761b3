package corpus

import (
	"chatbot-lab/domain"
	"chatbot-lab/errors"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var validate = validator.New()

// document mirrors the file layout. A pointer distinguishes a missing
// "intents" key from an empty list.
type document struct {
	Intents *[]domain.Intent `json:"intents" yaml:"intents"`
}

// Load reads a corpus file. YAML is chosen by extension, anything else must sniff as JSON.
func Load(path string) (domain.Corpus, error) {
	format, err := detectFormat(path)
	if err != nil {
		return domain.Corpus{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("reading corpus %s: %w", path, err)
	}
	return Parse(data, format)
}

func detectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("reading corpus %s: %w", path, err)
	}
	if !mime.Is("application/json") {
		return "", fmt.Errorf("%w: %s is %s, expected JSON or YAML", errors.ErrInvalidCorpus, path, mime.String())
	}
	return FormatJSON, nil
}

// Parse decodes and validates a corpus document.
func Parse(data []byte, format Format) (domain.Corpus, error) {
	var doc document
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	default:
		return domain.Corpus{}, fmt.Errorf("unsupported corpus format %q", format)
	}
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("%w: %v", errors.ErrInvalidCorpus, err)
	}
	if doc.Intents == nil {
		return domain.Corpus{}, fmt.Errorf("%w: missing top-level \"intents\" key", errors.ErrInvalidCorpus)
	}
	c := domain.Corpus{Intents: *doc.Intents}
	if err := Validate(c); err != nil {
		return domain.Corpus{}, err
	}
	return c, nil
}

// Validate rejects empty corpora and entries missing a tag, patterns or responses.
// Individual patterns are checked later by the trainer, which skips the malformed ones.
func Validate(c domain.Corpus) error {
	if len(c.Intents) == 0 {
		return errors.ErrEmptyCorpus
	}
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !asValidationErrors(err, &validationErrors) {
		return fmt.Errorf("%w: %v", errors.ErrInvalidCorpus, err)
	}
	fields := lo.Map(validationErrors, func(fe validator.FieldError, _ int) string {
		return fmt.Sprintf("%s (%s)", fe.Namespace(), describe(fe))
	})
	return fmt.Errorf("%w: %s", errors.ErrInvalidCorpus, strings.Join(fields, ", "))
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		return "needs at least " + fe.Param() + " item"
	default:
		return fe.Tag()
	}
}
