//go:generate go run go.uber.org/mock/mockgen -source=artifact.go -destination=../mocks/mock_artifact_repository.go -package=mocks
package repositories

import (
	"chatbot-lab/ai"
	"chatbot-lab/domain"
	"chatbot-lab/errors"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Bundle holds everything a serving process needs from one training run.
type Bundle struct {
	Manifest   domain.Manifest
	Vocabulary domain.Vocabulary
	Labels     domain.LabelSet
	Model      *ai.Network
	Corpus     domain.Corpus
}

type IArtifactRepository interface {
	Save(bundle Bundle) (domain.Manifest, error)
	Load(runID uuid.UUID) (Bundle, error)
	LoadCurrent() (Bundle, error)
	ListRuns() ([]domain.Manifest, error)
}

type ArtifactRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewArtifactRepository(db *badger.DB, log *slog.Logger) ArtifactRepository {
	return ArtifactRepository{db: db, log: log}
}

var currentKey = []byte("current")

const runPrefix = "run:"

func artifactKey(runID uuid.UUID, kind domain.ArtifactKind) []byte {
	return []byte(fmt.Sprintf("artifact:%s:%s", runID, kind))
}

func manifestKey(runID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("manifest:%s", runID))
}

// runKey is formatted as "run:{timestamp_padded}:{uuid}" so that a prefix scan
// lists training runs chronologically (19-digit zero padding keeps lexicographical order).
func runKey(m domain.Manifest) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", runPrefix, m.TrainedAt.UnixNano(), m.RunID))
}

// Save persists the four artifacts, their manifest and the "current" pointer
// in a single transaction: either the whole run becomes current or nothing changes.
// The returned manifest carries the fingerprints of the stored artifacts.
func (r ArtifactRepository) Save(bundle Bundle) (domain.Manifest, error) {
	payloads, err := encodeBundle(bundle)
	if err != nil {
		return domain.Manifest{}, err
	}

	manifest := bundle.Manifest
	manifest.Fingerprints = make(map[domain.ArtifactKind]string, len(payloads))
	for kind, data := range payloads {
		manifest.Fingerprints[kind] = fingerprint(data)
	}
	manifestBytes, err := encodeManifest(manifest)
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("encoding manifest: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		for kind, data := range payloads {
			if err := txn.Set(artifactKey(manifest.RunID, kind), data); err != nil {
				return err
			}
		}
		if err := txn.Set(manifestKey(manifest.RunID), manifestBytes); err != nil {
			return err
		}
		if err := txn.Set(runKey(manifest), nil); err != nil {
			return err
		}
		return txn.Set(currentKey, []byte(manifest.RunID.String()))
	})
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("storing run %s: %w", manifest.RunID, err)
	}
	r.log.Debug("Training run stored", "run_id", manifest.RunID, "vocabulary", manifest.VocabularySize, "labels", manifest.LabelCount)
	return manifest, nil
}

func encodeBundle(bundle Bundle) (map[domain.ArtifactKind][]byte, error) {
	if bundle.Model == nil {
		return nil, fmt.Errorf("bundle has no model")
	}
	if bundle.Model.InputSize() != bundle.Vocabulary.Len() || bundle.Model.OutputSize() != bundle.Labels.Len() {
		return nil, fmt.Errorf("model shape %dx%d does not match vocabulary %d and labels %d",
			bundle.Model.InputSize(), bundle.Model.OutputSize(), bundle.Vocabulary.Len(), bundle.Labels.Len())
	}
	vocabulary, err := encodeStrings(bundle.Vocabulary.Words())
	if err != nil {
		return nil, fmt.Errorf("encoding vocabulary: %w", err)
	}
	labels, err := encodeStrings(bundle.Labels.Tags())
	if err != nil {
		return nil, fmt.Errorf("encoding labels: %w", err)
	}
	model, err := encodeNetwork(bundle.Model)
	if err != nil {
		return nil, fmt.Errorf("encoding model: %w", err)
	}
	corpus, err := encodeCorpus(bundle.Corpus)
	if err != nil {
		return nil, fmt.Errorf("encoding corpus: %w", err)
	}
	return map[domain.ArtifactKind][]byte{
		domain.ArtifactVocabulary: vocabulary,
		domain.ArtifactLabels:     labels,
		domain.ArtifactModel:      model,
		domain.ArtifactCorpus:     corpus,
	}, nil
}

// LoadCurrent loads the run referenced by the "current" pointer.
func (r ArtifactRepository) LoadCurrent() (Bundle, error) {
	var runID uuid.UUID
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(currentKey)
		if err != nil {
			return err
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		runID, err = uuid.ParseBytes(value)
		return err
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return Bundle{}, fmt.Errorf("%w: %w", errors.ErrArtifactLoad, errors.ErrNoTrainingRun)
	}
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: reading current run: %v", errors.ErrArtifactLoad, err)
	}
	return r.Load(runID)
}

// Load reads every artifact of a run, checks each one against the fingerprint
// recorded in the manifest and verifies that the model dimensions match the
// vocabulary and the label set.
func (r ArtifactRepository) Load(runID uuid.UUID) (Bundle, error) {
	var manifestBytes []byte
	payloads := make(map[domain.ArtifactKind][]byte, len(domain.ArtifactKinds))
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		if manifestBytes, err = getValue(txn, manifestKey(runID)); err != nil {
			return fmt.Errorf("manifest: %w", err)
		}
		for _, kind := range domain.ArtifactKinds {
			if payloads[kind], err = getValue(txn, artifactKey(runID, kind)); err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
		}
		return nil
	})
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: run %s: %v", errors.ErrArtifactLoad, runID, err)
	}

	manifest, err := decodeManifest(manifestBytes)
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", errors.ErrArtifactLoad, err)
	}
	if manifest.RunID != runID {
		return Bundle{}, fmt.Errorf("%w: %w: manifest belongs to run %s", errors.ErrArtifactLoad, errors.ErrArtifactMismatch, manifest.RunID)
	}
	for _, kind := range domain.ArtifactKinds {
		if fingerprint(payloads[kind]) != manifest.Fingerprints[kind] {
			return Bundle{}, fmt.Errorf("%w: %w: %s fingerprint differs", errors.ErrArtifactLoad, errors.ErrArtifactMismatch, kind)
		}
	}

	bundle, err := decodeBundle(manifest, payloads)
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: run %s: %v", errors.ErrArtifactLoad, runID, err)
	}
	return bundle, nil
}

func decodeBundle(manifest domain.Manifest, payloads map[domain.ArtifactKind][]byte) (Bundle, error) {
	words, err := decodeStrings(payloads[domain.ArtifactVocabulary])
	if err != nil {
		return Bundle{}, fmt.Errorf("vocabulary: %w", err)
	}
	vocabulary, err := domain.NewVocabulary(words)
	if err != nil {
		return Bundle{}, err
	}
	tags, err := decodeStrings(payloads[domain.ArtifactLabels])
	if err != nil {
		return Bundle{}, fmt.Errorf("labels: %w", err)
	}
	labels, err := domain.NewLabelSet(tags)
	if err != nil {
		return Bundle{}, err
	}
	model, err := decodeNetwork(payloads[domain.ArtifactModel])
	if err != nil {
		return Bundle{}, fmt.Errorf("model: %w", err)
	}
	if model.InputSize() != vocabulary.Len() || model.OutputSize() != labels.Len() {
		return Bundle{}, fmt.Errorf("model shape %dx%d does not match vocabulary %d and labels %d",
			model.InputSize(), model.OutputSize(), vocabulary.Len(), labels.Len())
	}
	c, err := decodeCorpus(payloads[domain.ArtifactCorpus])
	if err != nil {
		return Bundle{}, fmt.Errorf("corpus: %w", err)
	}
	return Bundle{
		Manifest:   manifest,
		Vocabulary: vocabulary,
		Labels:     labels,
		Model:      model,
		Corpus:     c,
	}, nil
}

func getValue(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// ListRuns returns the manifests of every stored run, oldest first.
func (r ArtifactRepository) ListRuns() ([]domain.Manifest, error) {
	var manifests []domain.Manifest
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(runPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			// Key layout: run:{19 digits}:{uuid}
			runID, err := uuid.Parse(key[len(runPrefix)+20:])
			if err != nil {
				return fmt.Errorf("malformed run key %q: %w", key, err)
			}
			data, err := getValue(txn, manifestKey(runID))
			if err != nil {
				return fmt.Errorf("manifest of run %s: %w", runID, err)
			}
			manifest, err := decodeManifest(data)
			if err != nil {
				return err
			}
			manifests = append(manifests, manifest)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return manifests, nil
}
