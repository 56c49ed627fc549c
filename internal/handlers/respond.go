package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Stable machine-checkable error kinds carried on every error response.
const (
	CodeUnauthenticated = "unauthenticated"
	CodeAccessDenied    = "access_denied"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeValidation      = "validation_error"
	CodeInternal        = "internal"
)

func respondError(ctx *gin.Context, status int, code string, message string) {
	ctx.JSON(status, gin.H{"code": code, "error": message})
}

// parseIDParam reads a numeric path parameter, replying 400 on garbage.
func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 64)

	if err != nil || id == 0 {
		respondError(ctx, http.StatusBadRequest, CodeValidation, "Invalid "+name+" parameter")
		return 0, false
	}

	return uint(id), true
}
