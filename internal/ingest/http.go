package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/AngelCh415/spark-tracker/internal/models"
	"github.com/AngelCh415/spark-tracker/internal/utils"
)

var retryBackoff = utils.NewBackoff(100*time.Millisecond, 2)

// GetJSONWithRetry reintenta errores de red, 429 y 5xx; el resto falla al primer intento.
func GetJSONWithRetry(ctx context.Context, c HTTPClient, p models.Platform, url string, dst any) error {
	return retryBackoff.Do(ctx, func(int) error {
		err := getJSON(ctx, c, p, url, dst)
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return utils.Permanent(err)
		}
		return err
	})
}
