package repositories

import (
	"chatbot-lab/ai"
	"chatbot-lab/domain"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/crypto/blake2b"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Artifacts are stored as protobuf well-known types (ListValue / Struct).
// The bytes written to Badger are exactly the bytes that get fingerprinted.

func fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func encodeStrings(items []string) ([]byte, error) {
	list, err := structpb.NewList(lo.ToAnySlice(items))
	if err != nil {
		return nil, err
	}
	return proto.Marshal(list)
}

func decodeStrings(data []byte) ([]string, error) {
	var list structpb.ListValue
	if err := proto.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list.Values))
	for i, v := range list.Values {
		s, ok := v.Kind.(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("entry %d is not a string", i)
		}
		out = append(out, s.StringValue)
	}
	return out, nil
}

func encodeNetwork(network *ai.Network) ([]byte, error) {
	layers := lo.Map(network.Layers, func(layer ai.Layer, _ int) any {
		return map[string]any{
			"activation": string(layer.Activation),
			"dropout":    layer.Dropout,
			"bias":       lo.ToAnySlice(layer.Bias),
			"weights": lo.Map(layer.Weights, func(row []float64, _ int) any {
				return lo.ToAnySlice(row)
			}),
		}
	})
	s, err := structpb.NewStruct(map[string]any{"layers": layers})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func decodeNetwork(data []byte) (*ai.Network, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	rawLayers, ok := s.AsMap()["layers"].([]any)
	if !ok {
		return nil, fmt.Errorf("model has no layers")
	}
	network := &ai.Network{Layers: make([]ai.Layer, 0, len(rawLayers))}
	for l, raw := range rawLayers {
		fields, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("layer %d is malformed", l)
		}
		activation, _ := fields["activation"].(string)
		dropout, _ := fields["dropout"].(float64)
		bias, err := toFloats(fields["bias"])
		if err != nil {
			return nil, fmt.Errorf("layer %d bias: %w", l, err)
		}
		rows, ok := fields["weights"].([]any)
		if !ok {
			return nil, fmt.Errorf("layer %d has no weights", l)
		}
		weights := make([][]float64, len(rows))
		for o, row := range rows {
			if weights[o], err = toFloats(row); err != nil {
				return nil, fmt.Errorf("layer %d row %d: %w", l, o, err)
			}
		}
		network.Layers = append(network.Layers, ai.Layer{
			Weights:    weights,
			Bias:       bias,
			Activation: ai.Activation(activation),
			Dropout:    dropout,
		})
	}
	return network, network.Validate()
}

func toFloats(raw any) ([]float64, error) {
	values, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list")
	}
	out := make([]float64, len(values))
	for i, v := range values {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("entry %d is not a number", i)
		}
		out[i] = f
	}
	return out, nil
}

func toStrings(raw any) ([]string, error) {
	values, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list")
	}
	out := make([]string, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("entry %d is not a string", i)
		}
		out[i] = s
	}
	return out, nil
}

func encodeCorpus(c domain.Corpus) ([]byte, error) {
	intents := lo.Map(c.Intents, func(intent domain.Intent, _ int) any {
		return map[string]any{
			"tag":       intent.Tag,
			"patterns":  lo.ToAnySlice(intent.Patterns),
			"responses": lo.ToAnySlice(intent.Responses),
		}
	})
	s, err := structpb.NewStruct(map[string]any{"intents": intents})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func decodeCorpus(data []byte) (domain.Corpus, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return domain.Corpus{}, err
	}
	rawIntents, ok := s.AsMap()["intents"].([]any)
	if !ok {
		return domain.Corpus{}, fmt.Errorf("corpus has no intents")
	}
	c := domain.Corpus{Intents: make([]domain.Intent, 0, len(rawIntents))}
	for i, raw := range rawIntents {
		fields, ok := raw.(map[string]any)
		if !ok {
			return domain.Corpus{}, fmt.Errorf("intent %d is malformed", i)
		}
		tag, _ := fields["tag"].(string)
		patterns, err := toStrings(fields["patterns"])
		if err != nil {
			return domain.Corpus{}, fmt.Errorf("intent %q patterns: %w", tag, err)
		}
		responses, err := toStrings(fields["responses"])
		if err != nil {
			return domain.Corpus{}, fmt.Errorf("intent %q responses: %w", tag, err)
		}
		c.Intents = append(c.Intents, domain.Intent{Tag: tag, Patterns: patterns, Responses: responses})
	}
	return c, nil
}

func encodeManifest(m domain.Manifest) ([]byte, error) {
	fingerprints := make(map[string]any, len(m.Fingerprints))
	for kind, sum := range m.Fingerprints {
		fingerprints[string(kind)] = sum
	}
	s, err := structpb.NewStruct(map[string]any{
		"run_id":           m.RunID.String(),
		"trained_at":       m.TrainedAt.UTC().Format(time.RFC3339Nano),
		"resource_version": m.ResourceVersion,
		"fingerprints":     fingerprints,
		"vocabulary_size":  m.VocabularySize,
		"label_count":      m.LabelCount,
		"pattern_count":    m.PatternCount,
		"skipped_count":    m.SkippedCount,
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func decodeManifest(data []byte) (domain.Manifest, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return domain.Manifest{}, err
	}
	fields := s.AsMap()
	rawID, _ := fields["run_id"].(string)
	runID, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("manifest run id: %w", err)
	}
	rawAt, _ := fields["trained_at"].(string)
	trainedAt, err := time.Parse(time.RFC3339Nano, rawAt)
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("manifest trained_at: %w", err)
	}
	fingerprints := map[domain.ArtifactKind]string{}
	if raw, ok := fields["fingerprints"].(map[string]any); ok {
		for kind, sum := range raw {
			fingerprints[domain.ArtifactKind(kind)], _ = sum.(string)
		}
	}
	resourceVersion, _ := fields["resource_version"].(string)
	return domain.Manifest{
		RunID:           runID,
		TrainedAt:       trainedAt,
		ResourceVersion: resourceVersion,
		Fingerprints:    fingerprints,
		VocabularySize:  intField(fields, "vocabulary_size"),
		LabelCount:      intField(fields, "label_count"),
		PatternCount:    intField(fields, "pattern_count"),
		SkippedCount:    intField(fields, "skipped_count"),
	}, nil
}

func intField(fields map[string]any, name string) int {
	f, _ := fields[name].(float64)
	return int(f)
}
