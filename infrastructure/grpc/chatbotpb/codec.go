package chatbotpb

import (
	"chatbot-lab/domain"
	"chatbot-lab/search"
	"chatbot-lab/services"
	"fmt"

	"github.com/samber/lo"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	fieldUser        = "user"
	fieldBot         = "bot"
	fieldLanguage    = "language"
	fieldCandidates  = "candidates"
	fieldTag         = "tag"
	fieldProbability = "probability"
	fieldText        = "text"
	fieldLimit       = "limit"
	fieldSuggestions = "suggestions"
	fieldPattern     = "pattern"
	fieldScore       = "score"
)

func EncodeReply(reply services.Reply) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldUser:     reply.Turn.User,
		fieldBot:      reply.Turn.Bot,
		fieldLanguage: reply.Language,
		fieldCandidates: lo.Map(reply.Candidates, func(c domain.Candidate, _ int) any {
			return map[string]any{fieldTag: c.Tag, fieldProbability: c.Probability}
		}),
	})
}

func DecodeReply(s *structpb.Struct) (services.Reply, error) {
	fields := s.GetFields()
	reply := services.Reply{
		Turn: domain.Turn{
			User: fields[fieldUser].GetStringValue(),
			Bot:  fields[fieldBot].GetStringValue(),
		},
		Language: fields[fieldLanguage].GetStringValue(),
	}
	for i, v := range fields[fieldCandidates].GetListValue().GetValues() {
		candidate := v.GetStructValue()
		if candidate == nil {
			return services.Reply{}, fmt.Errorf("candidate %d is not an object", i)
		}
		reply.Candidates = append(reply.Candidates, domain.Candidate{
			Tag:         candidate.GetFields()[fieldTag].GetStringValue(),
			Probability: candidate.GetFields()[fieldProbability].GetNumberValue(),
		})
	}
	return reply, nil
}

func EncodeSuggestRequest(text string, limit int) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{fieldText: text, fieldLimit: limit})
}

func DecodeSuggestRequest(s *structpb.Struct) (string, int) {
	fields := s.GetFields()
	return fields[fieldText].GetStringValue(), int(fields[fieldLimit].GetNumberValue())
}

func EncodeSuggestions(suggestions []search.Suggestion) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldSuggestions: lo.Map(suggestions, func(s search.Suggestion, _ int) any {
			return map[string]any{fieldTag: s.Tag, fieldPattern: s.Pattern, fieldScore: s.Score}
		}),
	})
}

func DecodeSuggestions(s *structpb.Struct) ([]search.Suggestion, error) {
	var suggestions []search.Suggestion
	for i, v := range s.GetFields()[fieldSuggestions].GetListValue().GetValues() {
		item := v.GetStructValue()
		if item == nil {
			return nil, fmt.Errorf("suggestion %d is not an object", i)
		}
		suggestions = append(suggestions, search.Suggestion{
			Tag:     item.GetFields()[fieldTag].GetStringValue(),
			Pattern: item.GetFields()[fieldPattern].GetStringValue(),
			Score:   item.GetFields()[fieldScore].GetNumberValue(),
		})
	}
	return suggestions, nil
}
