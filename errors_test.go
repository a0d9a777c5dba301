package qi_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/qi"
)

func TestValidationError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := qi.NewValidationError("createFunction", "requires returnType")
		assert.Equal(t, "qi: createFunction: requires returnType", err.Error())
	})

	t.Run("NoOp", func(t *testing.T) {
		err := qi.NewValidationError("", "requires body")
		assert.Equal(t, "qi: requires body", err.Error())
	})

	t.Run("Validationf", func(t *testing.T) {
		err := qi.Validationf("addIndex", "field %d is empty", 2)
		assert.Equal(t, "qi: addIndex: field 2 is empty", err.Error())
	})

	t.Run("IsValidationError", func(t *testing.T) {
		err := qi.NewValidationError("dropFunction", "requires functionName")
		assert.True(t, qi.IsValidationError(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, qi.IsValidationError(wrapped))

		// Non-matching error
		assert.False(t, qi.IsValidationError(errors.New("other error")))
		assert.False(t, qi.IsValidationError(nil))
	})
}

func TestUnsupportedError(t *testing.T) {
	err := qi.NewUnsupportedError("sqlite", "stored functions")
	assert.Equal(t, `qi: stored functions is not supported by dialect "sqlite"`, err.Error())
	assert.True(t, qi.IsUnsupported(err))
	assert.True(t, qi.IsUnsupported(fmt.Errorf("wrapper: %w", err)))
	assert.False(t, qi.IsUnsupported(qi.NewValidationError("op", "msg")))
	assert.False(t, qi.IsUnsupported(nil))
}

func TestExecutionError(t *testing.T) {
	driverErr := errors.New("pq: function create_job(character varying) does not exist")

	t.Run("Error", func(t *testing.T) {
		err := qi.NewExecutionError("dropFunction", "create_job", qi.KindNotFound, driverErr)
		assert.Equal(t, "qi: dropFunction create_job: pq: function create_job(character varying) does not exist", err.Error())
		assert.Regexp(t, "function create_job.*does not exist", err.Error())

		err = qi.NewExecutionError("showIndex", "", qi.KindSyntax, errors.New("boom"))
		assert.Equal(t, "qi: showIndex: boom", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		err := qi.NewExecutionError("dropFunction", "f", qi.KindNotFound, driverErr)
		assert.True(t, errors.Is(err, driverErr))
	})

	t.Run("Kinds", func(t *testing.T) {
		notFound := fmt.Errorf("wrapper: %w", qi.NewExecutionError("dropIndex", "i", qi.KindNotFound, driverErr))
		assert.True(t, qi.IsExecutionError(notFound))
		assert.True(t, qi.IsNotFound(notFound))
		assert.False(t, qi.IsAlreadyExists(notFound))
		assert.False(t, qi.IsGeneric(notFound))

		exists := qi.NewExecutionError("addIndex", "i", qi.KindAlreadyExists, driverErr)
		assert.True(t, qi.IsAlreadyExists(exists))
		assert.False(t, qi.IsNotFound(exists))

		for _, k := range []qi.Kind{qi.KindSyntax, qi.KindPermission, qi.KindConstraint} {
			assert.True(t, qi.IsGeneric(qi.NewExecutionError("op", "", k, driverErr)), k.String())
		}

		assert.False(t, qi.IsExecutionError(driverErr))
		assert.False(t, qi.IsNotFound(nil))
		assert.False(t, qi.IsGeneric(nil))
	})

	t.Run("KindString", func(t *testing.T) {
		assert.Equal(t, "not found", qi.KindNotFound.String())
		assert.Equal(t, "already exists", qi.KindAlreadyExists.String())
		assert.Equal(t, "Kind(42)", qi.Kind(42).String())
	})
}

func TestIntrospectionError(t *testing.T) {
	err := &qi.IntrospectionError{Table: "Group", Index: "group_username", Field: "unique"}
	assert.Equal(t, `qi: introspecting Group: index "group_username" has inconsistent unique flag across catalog rows`, err.Error())
	assert.True(t, qi.IsIntrospectionError(fmt.Errorf("wrapper: %w", err)))
	assert.False(t, qi.IsIntrospectionError(errors.New("other")))
	assert.False(t, qi.IsIntrospectionError(nil))
}

func TestErrPlanDone(t *testing.T) {
	assert.Error(t, qi.ErrPlanDone)
	assert.Contains(t, qi.ErrPlanDone.Error(), "already executed")
}

// BenchmarkErrors benchmarks error creation and checking.
func BenchmarkErrors(b *testing.B) {
	b.Run("NewExecutionError", func(b *testing.B) {
		underlying := errors.New("does not exist")
		for i := 0; i < b.N; i++ {
			_ = qi.NewExecutionError("dropFunction", "f", qi.KindNotFound, underlying)
		}
	})

	b.Run("IsNotFound", func(b *testing.B) {
		err := fmt.Errorf("wrap: %w", qi.NewExecutionError("dropFunction", "f", qi.KindNotFound, errors.New("x")))
		for i := 0; i < b.N; i++ {
			_ = qi.IsNotFound(err)
		}
	})
}
