package httpinterface

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	webhookpubsub "github.com/zkramp/ramp-daemon/internal/infrastructure/pubsub/webhook"
	"github.com/zkramp/ramp-daemon/pkg/jwtauth"
)

var (
	errMissingCaller   = errors.New("missing caller identity")
	errNotOwner        = errors.New("caller is not the owner")
	errInvalidParam    = errors.New("invalid request parameter")
	errWebhookDisabled = errors.New("webhooks are not enabled")
	errStreamDisabled  = errors.New("event stream is not enabled")
)

var (
	badRequestErrors = []error{
		errInvalidParam,
		domain.ErrDepositInvalidDepositor,
		domain.ErrDepositInvalidToken,
		domain.ErrDepositInvalidAmount,
		domain.ErrDepositMissingVerifiers,
		domain.ErrDepositInvalidConversionRate,
		domain.ErrIntentInvalidTaker,
		domain.ErrIntentInvalidRecipient,
		domain.ErrIntentInvalidAmount,
		domain.ErrAccountInvalidAddress,
		domain.ErrAccountInvalidIDHash,
		domain.ErrInvalidParams,
		domain.ErrInvalidKeyHash,
		domain.ErrInvalidSenderAddress,
		domain.ErrInvalidTimestampBuffer,
		domain.ErrNullifierInvalid,
		webhookpubsub.ErrMissingTopic,
		webhookpubsub.ErrInvalidEndpoint,
	}
	unauthorizedErrors = []error{
		errMissingCaller,
		jwtauth.ErrMissingToken,
		jwtauth.ErrInvalidToken,
		jwtauth.ErrMissingSubject,
	}
	forbiddenErrors = []error{
		errNotOwner,
		domain.ErrUnauthorized,
		domain.ErrTakerDenied,
		domain.ErrTakerNotAllowed,
		domain.ErrNullifierWriterNotAllowed,
	}
	notFoundErrors = []error{
		errWebhookDisabled,
		errStreamDisabled,
		domain.ErrDepositNotFound,
		domain.ErrIntentNotFound,
		domain.ErrAccountNotFound,
		domain.ErrNullifierNotFound,
		domain.ErrUnknownVerifier,
		domain.ErrKeyHashNotFound,
		webhookpubsub.ErrSubscriptionNotFound,
	}
	conflictErrors = []error{
		domain.ErrNullifierAlreadyUsed,
		domain.ErrDuplicateIntent,
		domain.ErrAlreadyRegistered,
		domain.ErrIntentNotOpen,
		domain.ErrIntentExpired,
		domain.ErrIntentNotExpired,
		domain.ErrDepositNotActive,
		domain.ErrHasOpenIntents,
		domain.ErrMaxIntentsReached,
		domain.ErrMaxDepositsReached,
		domain.ErrCooldownActive,
		domain.ErrInsufficientLiquidity,
		domain.ErrInsufficientBalance,
		domain.ErrKeyHashAlreadyAdded,
		domain.ErrDepositAlreadyExists,
		domain.ErrIntentAlreadyExists,
		domain.ErrAccountAlreadyExists,
	}
	unprocessableErrors = []error{
		domain.ErrFactMismatch,
		domain.ErrInvalidProof,
		domain.ErrInvalidBodyHashProof,
		domain.ErrInvalidIntermediateOrOutputHash,
		domain.ErrInvalidMailserverKeyHash,
		domain.ErrInvalidEmailFromAddress,
		domain.ErrInvalidSignals,
		domain.ErrVerifierNotAccepted,
		domain.ErrAccountNotRegistered,
		domain.ErrBelowMinimum,
		domain.ErrAboveMaximum,
		domain.ErrDepositBelowMinimum,
		domain.ErrDepositMissingConversionRate,
		domain.ErrDepositUnknownIntent,
	}
)

// statusCode maps an error to the http status code of its class.
func statusCode(err error) int {
	classes := []struct {
		status int
		errors []error
	}{
		{http.StatusBadRequest, badRequestErrors},
		{http.StatusUnauthorized, unauthorizedErrors},
		{http.StatusForbidden, forbiddenErrors},
		{http.StatusNotFound, notFoundErrors},
		{http.StatusConflict, conflictErrors},
		{http.StatusUnprocessableEntity, unprocessableErrors},
	}
	for _, class := range classes {
		for _, e := range class.errors {
			if errors.Is(err, e) {
				return class.status
			}
		}
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	status := statusCode(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error(
			"failed to serve request",
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
