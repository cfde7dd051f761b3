package domain

import (
	"time"

	"github.com/google/uuid"
)

// ArtifactKind names one of the artifacts produced by a training run.
type ArtifactKind string

const (
	ArtifactVocabulary ArtifactKind = "vocabulary"
	ArtifactLabels     ArtifactKind = "labels"
	ArtifactModel      ArtifactKind = "model"
	ArtifactCorpus     ArtifactKind = "corpus"
)

// ArtifactKinds lists every artifact a serving process needs.
var ArtifactKinds = []ArtifactKind{ArtifactVocabulary, ArtifactLabels, ArtifactModel, ArtifactCorpus}

// Manifest ties the artifacts of a single training run together.
// Fingerprints are content hashes of each serialized artifact.
type Manifest struct {
	RunID           uuid.UUID
	TrainedAt       time.Time
	ResourceVersion string
	Fingerprints    map[ArtifactKind]string
	VocabularySize  int
	LabelCount      int
	PatternCount    int
	SkippedCount    int
}
