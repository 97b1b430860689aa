package i18n

import (
	"errors"
	"testing"

	"golang.org/x/text/language"

	"legendemer/internal/domain"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		prefs []string
		want  language.Tag
	}{
		{prefs: nil, want: language.French},
		{prefs: []string{"en-US,en;q=0.9"}, want: language.English},
		{prefs: []string{"fr-BE"}, want: language.French},
		{prefs: []string{"de-DE"}, want: language.French},
		{prefs: []string{"", "en"}, want: language.English},
		{prefs: []string{";;;"}, want: language.French},
	}
	for _, tc := range tests {
		if got := Match(tc.prefs...); got != tc.want {
			t.Fatalf("Match(%q) = %v, want %v", tc.prefs, got, tc.want)
		}
	}
}

func TestErrorTextFrenchWording(t *testing.T) {
	if got := ErrorText("fr", domain.ErrorKindUpstreamAuth); got != "Erreur de clé API. Veuillez resélectionner votre projet." {
		t.Fatalf("fr upstream_auth = %q", got)
	}
	if got := ErrorText("en", domain.ErrorKindTimeout); got != "The video is taking too long. Try again later." {
		t.Fatalf("en timeout = %q", got)
	}
	if got := ErrorText("fr", domain.ErrorKind("mystery")); got != ErrorText("fr", domain.ErrorKindTransport) {
		t.Fatalf("unknown kind = %q, want transport message", got)
	}
}

func TestEveryEntryHasBothLocales(t *testing.T) {
	for key, msgs := range entries {
		if msgs[0] == "" || msgs[1] == "" {
			t.Fatalf("entry %q is missing a translation", key)
		}
		if Text("fr", key) != msgs[0] || Text("en", key) != msgs[1] {
			t.Fatalf("entry %q does not round trip through the catalog", key)
		}
	}
}

func TestStateText(t *testing.T) {
	if got := StateText("en", domain.StatePolling); got != "Hauling in the net..." {
		t.Fatalf("StateText = %q", got)
	}
}

func TestFailureText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"transport keeps upstream message", domain.NewGenerationError(errors.New("quota exceeded for model veo")), "quota exceeded for model veo"},
		{"transport without message", &domain.GenerationError{Kind: domain.ErrorKindTransport}, ErrorText("fr", domain.ErrorKindTransport)},
		{"transport blank message", domain.NewGenerationError(errors.New("  ")), ErrorText("fr", domain.ErrorKindTransport)},
		{"plain error", errors.New("connection reset"), "connection reset"},
		{"timeout uses catalog", domain.NewGenerationError(domain.ErrPollTimeout), ErrorText("fr", domain.ErrorKindTimeout)},
		{"upstream auth uses catalog", domain.NewGenerationError(domain.ErrCredentialRejected), "Erreur de clé API. Veuillez resélectionner votre projet."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FailureText("fr", tc.err); got != tc.want {
				t.Fatalf("FailureText = %q, want %q", got, tc.want)
			}
		})
	}
}
