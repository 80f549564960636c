package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/NateM03/gym/pkg"

	log "github.com/sirupsen/logrus"
)

type exercisesRepo interface {
	List(ctx context.Context, params ListParams) ([]Exercise, error)
}

type Handler struct {
	repo exercisesRepo
}

func NewHandler(repo exercisesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	exercises, err := handler.repo.List(r.Context(), ListParams{
		MuscleGroup: r.URL.Query().Get("muscleGroup"),
		Equipment:   r.URL.Query().Get("equipment"),
	})
	if err != nil {
		log.Errorf("list exercises error: %s", err)
		http.Error(w, "failed to get exercises", http.StatusInternalServerError)
		return
	}

	exercisesJson, err := json.Marshal(exercises)
	if err != nil {
		log.Errorf("marshal exercises error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resJson := fmt.Sprintf(`{"exercises": %s, "total": %d}`, exercisesJson, len(exercises))
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, []byte(resJson))
}
