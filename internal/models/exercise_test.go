package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExerciseVariantSingleShot(t *testing.T) {
	require.True(t, VariantFindMistake.SingleShot())
	require.True(t, VariantMissingLink.SingleShot())
	require.False(t, VariantTeachDialogue.SingleShot())
	require.False(t, ExerciseVariant("unknown").SingleShot())
}
