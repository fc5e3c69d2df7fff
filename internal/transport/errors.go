package transport

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rpggio/officina/internal/attachment"
	"github.com/rpggio/officina/internal/domain/dependent"
	"github.com/rpggio/officina/internal/domain/project"
	"github.com/rpggio/officina/internal/domain/snippet"
	"github.com/rpggio/officina/internal/repository"
)

const (
	msgInternal       = "Si è verificato un errore imprevisto. Riprova più tardi."
	msgInvalidRequest = "Richiesta non valida"
	msgInvalidInput   = "Dati non validi"
	msgTooLarge       = "File troppo grande"
	msgProjectMissing = "Progetto non trovato"
)

// messages are the user-facing texts for one failing operation.
type messages struct {
	// failed is shown when the store is unreachable or a reference update
	// was left half done.
	failed   string
	notFound string
}

func retryLater(action string) string {
	return "Impossibile " + action + ". Riprova più tardi."
}

var (
	projectListMsgs   = messages{failed: retryLater("caricare i progetti"), notFound: msgProjectMissing}
	projectGetMsgs    = messages{failed: "Errore nel caricamento del progetto", notFound: msgProjectMissing}
	projectSaveMsgs   = messages{failed: retryLater("aggiungere/aggiornare il progetto"), notFound: msgProjectMissing}
	projectDeleteMsgs = messages{failed: retryLater("eliminare il progetto"), notFound: msgProjectMissing}
	dashboardMsgs     = messages{failed: retryLater("caricare la dashboard")}
	snippetListMsgs   = messages{failed: retryLater("caricare gli snippet")}
	snippetGetMsgs    = messages{failed: "Errore nel caricamento dello snippet", notFound: "Snippet non trovato"}
	snippetSaveMsgs   = messages{failed: retryLater("salvare lo snippet"), notFound: "Snippet non trovato"}
	snippetDeleteMsgs = messages{failed: retryLater("eliminare lo snippet"), notFound: "Snippet non trovato"}
)

func recordNotFound(kind dependent.Kind) string {
	return capitalize(kind.Singular) + " non trovato"
}

func recordListMsgs(kind dependent.Kind) messages {
	return messages{failed: retryLater("caricare i " + kind.Plural)}
}

func recordGetMsgs(kind dependent.Kind) messages {
	return messages{failed: "Errore nel caricamento del " + kind.Singular, notFound: recordNotFound(kind)}
}

func recordCreateMsgs(kind dependent.Kind) messages {
	return messages{failed: retryLater("aggiungere il " + kind.Singular), notFound: recordNotFound(kind)}
}

func recordDeleteMsgs(kind dependent.Kind) messages {
	return messages{failed: retryLater("eliminare il " + kind.Singular), notFound: recordNotFound(kind)}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// respondError converts a service error into an HTTP response. Nothing is
// retried; every failure ends here.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error, msgs messages) {
	status, message, fields := classify(err, msgs)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Debug("request rejected", "status", status, "error", err)
	}
	writeError(w, status, message, fields)
}

func classify(err error, msgs messages) (int, string, map[string]string) {
	switch {
	case errors.Is(err, dependent.ErrPartialReferenceUpdate),
		errors.Is(err, repository.ErrUnavailable):
		return http.StatusServiceUnavailable, msgs.failed, nil

	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, project.ErrInvalidReference),
		errors.Is(err, dependent.ErrInvalidInput),
		errors.Is(err, snippet.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidInput):
		return http.StatusBadRequest, msgInvalidInput, fieldErrors(err)

	case errors.Is(err, attachment.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, msgTooLarge, nil

	case errors.Is(err, dependent.ErrProjectAlreadyLinked):
		return http.StatusConflict, "Il progetto ha già un documento associato", nil

	case errors.Is(err, project.ErrProjectNotFound):
		return http.StatusNotFound, msgProjectMissing, nil

	case errors.Is(err, dependent.ErrRecordNotFound),
		errors.Is(err, snippet.ErrSnippetNotFound):
		message := msgs.notFound
		if message == "" {
			message = "Elemento non trovato"
		}
		return http.StatusNotFound, message, nil
	}

	if msgs.failed != "" {
		return http.StatusInternalServerError, msgs.failed, nil
	}
	return http.StatusInternalServerError, msgInternal, nil
}
