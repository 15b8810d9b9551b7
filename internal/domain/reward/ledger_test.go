package reward_test

import (
	"testing"

	"github.com/rpggio/focusgate/internal/domain/history"
	"github.com/rpggio/focusgate/internal/domain/reward"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	amounts := reward.Amounts{Completion: 10, Cancellation: -4}

	done := history.FocusSession{Status: history.StatusCompleted, IsCounted: true}
	quit := history.FocusSession{Status: history.StatusCanceled, IsCounted: true}
	noise := history.FocusSession{Status: history.StatusCanceled, IsCounted: false}

	require.Equal(t, 10, reward.Apply(0, done, amounts))
	require.Equal(t, 6, reward.Apply(10, quit, amounts))
	require.Equal(t, 0, reward.Apply(3, quit, amounts))
	require.Equal(t, 3, reward.Apply(3, noise, amounts))
}
