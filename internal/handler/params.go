package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
	appErrors "github.com/noah-isme/ledgerdesk-api/pkg/errors"
)

func pathID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	return id, nil
}

func pathDomain(c *gin.Context) models.Domain {
	return models.Domain(c.Param("domain"))
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}

func countMeta(n int) map[string]interface{} {
	return map[string]interface{}{"total": n}
}
