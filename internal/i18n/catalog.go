// Package i18n holds the user-facing messages of the service in French, the
// default, and English.
package i18n

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"legendemer/internal/domain"
)

const (
	KeyMissingPhoto    = "missing_photo"
	KeyInvalidRequest  = "invalid_request"
	KeyBusy            = "busy"
	KeyNotFound        = "not_found"
	KeyRateLimited     = "rate_limited"
	KeyCredentialSaved = "credential_saved"
	KeyShareSoon       = "share_soon"
)

// Supported lists the locales in preference order. The first one is the default.
var Supported = []language.Tag{language.French, language.English}

var (
	matcher = language.NewMatcher(Supported)
	cat     = build()
)

var entries = map[string][2]string{
	KeyMissingPhoto:    {"Veuillez d'abord ajouter une photo de vous.", "Please add a photo of yourself first."},
	KeyInvalidRequest:  {"La demande est invalide.", "The request is invalid."},
	KeyBusy:            {"Une création est déjà en cours. Patientez quelques instants.", "A creation is already in progress. Please wait a moment."},
	KeyNotFound:        {"Ce souvenir n'existe plus.", "This keepsake no longer exists."},
	KeyRateLimited:     {"Trop de demandes. Réessayez dans une minute.", "Too many requests. Try again in a minute."},
	KeyCredentialSaved: {"Clé API enregistrée.", "API key saved."},
	KeyShareSoon:       {"Partage bientôt disponible !", "Sharing coming soon!"},

	errorKey(domain.ErrorKindConfiguration): {"Clé API manquante. Configurez GEMINI_API_KEY.", "Missing API key. Set GEMINI_API_KEY."},
	errorKey(domain.ErrorKindUpstreamAuth):  {"Erreur de clé API. Veuillez resélectionner votre projet.", "API key error. Please select your project again."},
	errorKey(domain.ErrorKindUpstreamEmpty): {"Le modèle n'a produit aucun média. Réessayez avec une autre photo.", "The model produced no media. Try again with another photo."},
	errorKey(domain.ErrorKindTimeout):       {"La vidéo prend trop de temps. Réessayez plus tard.", "The video is taking too long. Try again later."},
	errorKey(domain.ErrorKindTransport):     {"Une erreur est survenue lors de la création de votre souvenir.", "Something went wrong while creating your keepsake."},

	stateKey(domain.StateIdle):       {"En attente...", "Waiting..."},
	stateKey(domain.StateEnriching):  {"Analyse de la météo bretonne...", "Checking the Breton weather..."},
	stateKey(domain.StateGenerating): {"Ferrage du poisson...", "Hooking the fish..."},
	stateKey(domain.StatePolling):    {"Remontée du filet...", "Hauling in the net..."},
	stateKey(domain.StateDone):       {"La légende s'écrit...", "The legend is written..."},
	stateKey(domain.StateFailed):     {"La prise s'est échappée.", "The catch got away."},
}

func build() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(Supported[0]))
	for key, msgs := range entries {
		for i, tag := range Supported {
			_ = b.SetString(tag, key, msgs[i])
		}
	}
	return b
}

func errorKey(kind domain.ErrorKind) string { return "error." + string(kind) }

func stateKey(state domain.State) string { return "state." + string(state) }

// Match picks the best supported locale for the given preferences, each being
// a language tag or a full Accept-Language header. Unparseable input falls
// back to French.
func Match(prefs ...string) language.Tag {
	var tags []language.Tag
	for _, p := range prefs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return Supported[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

// Printer returns a printer bound to the catalog.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(cat))
}

// Text translates key for the locale.
func Text(locale, key string) string {
	return Printer(Match(locale)).Sprintf(key)
}

// ErrorText is the message shown for a failed generation.
func ErrorText(locale string, kind domain.ErrorKind) string {
	if _, ok := entries[errorKey(kind)]; !ok {
		kind = domain.ErrorKindTransport
	}
	return Text(locale, errorKey(kind))
}

// FailureText is the message shown for err. Transport failures carry their own
// message when they have one; every other kind uses the catalog text.
func FailureText(locale string, err error) string {
	kind := domain.Classify(err)
	if kind == domain.ErrorKindTransport {
		if msg := causeMessage(err); msg != "" {
			return msg
		}
	}
	return ErrorText(locale, kind)
}

func causeMessage(err error) string {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		if genErr.Err == nil {
			return ""
		}
		err = genErr.Err
	}
	return strings.TrimSpace(err.Error())
}

// StateText is the loading message shown for a state.
func StateText(locale string, state domain.State) string {
	return Text(locale, stateKey(state))
}
