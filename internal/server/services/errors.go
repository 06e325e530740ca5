package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/admissions/internal/common"
	"github.com/dmitrijs2005/admissions/internal/logging"
	"github.com/google/uuid"
)

var errCoercion = errors.New("coercion failed")

// domainErrors reach callers unchanged; everything else is logged and
// reported as common.ErrorInternal.
var domainErrors = []error{
	common.ErrorNotFound,
	common.ErrorDuplicateEmail,
	common.ErrorUnauthorized,
	common.ErrorForbidden,
	common.ErrorInvalidCredentials,
	common.ErrorValidation,
}

func internalError(ctx context.Context, log logging.Logger, op string, err error) error {
	for _, e := range domainErrors {
		if errors.Is(err, e) {
			return err
		}
	}
	log.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}

// validID rejects ids that cannot be row keys. They are reported as not
// found rather than passed to the database, where they would fail the uuid
// cast.
func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	return nil
}
