package api

import (
	"net/http"

	"arena-ledger/domain/entities"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var statusByCode = map[entities.ErrorCode]int{
	entities.ErrInvalidInput:       http.StatusBadRequest,
	entities.ErrNotFound:           http.StatusNotFound,
	entities.ErrInsufficientFunds:  http.StatusConflict,
	entities.ErrStoreUnavailable:   http.StatusServiceUnavailable,
	entities.ErrTransactionAborted: http.StatusServiceUnavailable,
}

// respondError writes err as JSON. Settlement errors keep their code so callers
// can tell a retryable failure from a rejected request.
func respondError(c *gin.Context, err error) {
	code := entities.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		log.WithFields(log.Fields{
			"path":  c.FullPath(),
			"error": err,
		}).Error("Unclassified error reached the API")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", "1")
	}
	c.JSON(status, gin.H{
		"error":     err.Error(),
		"code":      code,
		"retryable": status == http.StatusServiceUnavailable,
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":     err.Error(),
		"code":      entities.ErrInvalidInput,
		"retryable": false,
	})
}
