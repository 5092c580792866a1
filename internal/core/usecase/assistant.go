package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/kirillkom/claimsense/internal/core/domain"
	"github.com/kirillkom/claimsense/internal/core/ports"
)

var (
	eligibleReplies = map[domain.Language][]string{
		domain.LanguageEnglish: {
			"Great! Your ₹%[1]s claim is all set. Our team will reach out shortly.",
			"Perfect! Your ₹%[1]s claim is approved and processing.",
			"Excellent! Your ₹%[1]s claim is ready to go.",
			"Awesome! Your ₹%[1]s claim has been processed successfully.",
		},
		domain.LanguageHindi: {
			"बहुत अच्छा! आपका ₹%[1]s का क्लेम तैयार है।",
			"शानदार! आपका ₹%[1]s का क्लेम स्वीकृत हो गया है।",
			"उत्कृष्ट! आपका ₹%[1]s का क्लेम प्रोसेस हो गया है।",
			"बेहतरीन! आपका ₹%[1]s का क्लेम मंजूर हो गया है।",
		},
		domain.LanguageMarathi: {
			"छान! तुमचा ₹%[1]s चा क्लेम तयार आहे.",
			"उत्कृष्ट! तुमचा ₹%[1]s चा क्लेम मंजूर झाला आहे.",
			"शानदार! तुमचा ₹%[1]s चा क्लेम प्रोसेस झाला आहे.",
			"बेहतरीन! तुमचा ₹%[1]s चा क्लेम स्वीकृत झाला आहे.",
		},
	}

	ineligibleReplies = map[domain.Language][]string{
		domain.LanguageEnglish: {
			"Your claim couldn't be approved due to: %[1]s Let me help you explore alternatives.",
			"Unfortunately, your claim was rejected: %[1]s I can help you understand your options.",
			"Your claim couldn't be processed: %[1]s Let me assist you with other solutions.",
			"The claim was declined because: %[1]s I'm here to help you find alternatives.",
		},
		domain.LanguageHindi: {
			"आपका क्लेम स्वीकृत नहीं हो सका: %[1]s मैं आपको विकल्पों में मदद करूंगा।",
			"दुर्भाग्य से आपका क्लेम अस्वीकृत हो गया: %[1]s मैं आपको समझने में मदद करूंगा।",
			"आपका क्लेम प्रोसेस नहीं हो सका: %[1]s मैं आपको अन्य समाधानों में मदद करूंगा।",
			"क्लेम अस्वीकृत हो गया क्योंकि: %[1]s मैं आपको विकल्प खोजने में मदद करूंगा।",
		},
		domain.LanguageMarathi: {
			"तुमचा क्लेम मंजूर होऊ शकला नाही: %[1]s मी तुम्हाला पर्यायांमध्ये मदत करतो.",
			"दुर्दैवाने तुमचा क्लेम नाकारला गेला: %[1]s मी तुम्हाला समजून घेण्यात मदत करतो.",
			"तुमचा क्लेम प्रोसेस होऊ शकला नाही: %[1]s मी तुम्हाला इतर उपायांमध्ये मदत करतो.",
			"क्लेम नाकारला गेला कारण: %[1]s मी तुम्हाला पर्याय शोधण्यात मदत करतो.",
		},
	}
)

// FallbackReply picks a canned reply for the eligibility outcome and language.
// pick must return a value in [0, n).
func FallbackReply(eligible bool, lang domain.Language, doc *domain.ExtractedDocument, reason string, pick func(n int) int) string {
	set := ineligibleReplies
	arg := strings.TrimSpace(reason)
	if eligible {
		set = eligibleReplies
		arg = ""
		if doc != nil {
			arg = strings.TrimSpace(doc.BillAmount.String())
		}
		if arg == "" {
			arg = "0"
		}
	} else if arg == "" {
		arg = "the claim did not meet the policy rules."
	} else if !strings.HasSuffix(arg, ".") && !strings.HasSuffix(arg, "।") {
		arg += "."
	}

	templates, ok := set[lang]
	if !ok {
		templates = set[domain.LanguageEnglish]
	}
	idx := pick(len(templates))
	if idx < 0 || idx >= len(templates) {
		idx = 0
	}
	return fmt.Sprintf(templates[idx], arg)
}

type AssistantUseCase struct {
	client ports.AssistantClient
	pick   func(n int) int
}

func NewAssistantUseCase(client ports.AssistantClient) *AssistantUseCase {
	return &AssistantUseCase{
		client: client,
		pick:   rand.IntN,
	}
}

// WithPicker replaces the random template picker.
func (uc *AssistantUseCase) WithPicker(pick func(n int) int) *AssistantUseCase {
	if pick != nil {
		uc.pick = pick
	}
	return uc
}

func (uc *AssistantUseCase) Reply(ctx context.Context, req domain.AssistantRequest) (*domain.AssistantReply, error) {
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" && !req.IsInitialMessage {
		return nil, domain.WrapError(domain.ErrInvalidInput, "assistant reply", errors.New("message is required"))
	}

	lang := DetectLanguage(req.Message)
	reply, err := uc.client.Chat(ctx, req)
	if err == nil && strings.TrimSpace(reply) != "" {
		return &domain.AssistantReply{Reply: reply, Language: lang}, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}
	if err == nil {
		err = errors.New("empty reply")
	}

	slog.Warn("assistant_fallback",
		"language", string(lang),
		"eligible", req.Eligible,
		"error", err,
	)
	return &domain.AssistantReply{
		Reply:    FallbackReply(req.Eligible, lang, req.Document, req.Reason, uc.pick),
		Language: lang,
		Fallback: true,
	}, nil
}
