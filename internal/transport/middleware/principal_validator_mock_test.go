package middleware

import (
	"sync"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
)

var _ principalValidator = &principalValidatorMock{}

type principalValidatorMock struct {
	ValidatePrincipalFunc func(token string) (domain.Principal, error)

	calls struct {
		ValidatePrincipal []struct {
			Token string
		}
	}
	lockValidatePrincipal sync.RWMutex
}

func (mock *principalValidatorMock) ValidatePrincipal(token string) (domain.Principal, error) {
	if mock.ValidatePrincipalFunc == nil {
		panic("principalValidatorMock.ValidatePrincipalFunc: method is nil but principalValidator.ValidatePrincipal was just called")
	}
	callInfo := struct {
		Token string
	}{Token: token}
	mock.lockValidatePrincipal.Lock()
	mock.calls.ValidatePrincipal = append(mock.calls.ValidatePrincipal, callInfo)
	mock.lockValidatePrincipal.Unlock()
	return mock.ValidatePrincipalFunc(token)
}

func (mock *principalValidatorMock) ValidatePrincipalCalls() []struct {
	Token string
} {
	mock.lockValidatePrincipal.RLock()
	calls := mock.calls.ValidatePrincipal
	mock.lockValidatePrincipal.RUnlock()
	return calls
}
