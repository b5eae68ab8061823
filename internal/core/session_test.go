package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rosterCSV = "name,grade\nAda,10\nBob,11\nCy,10\nDi,12\nEd,11\n"

func loadedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(SessionOptions{Grouper: NewSeededGrouper(1)})
	require.NoError(t, s.Load("class.csv", strings.NewReader(rosterCSV)))
	return s
}

func TestNewSession_Defaults(t *testing.T) {
	s := NewSession(SessionOptions{})

	assert.Equal(t, DefaultGroupSize, s.GroupSize)
	assert.Equal(t, DefaultGroupSizeLimit, s.MaxGroupSize)
	assert.Equal(t, FormatXLSX, s.Format)
	assert.True(t, s.Shuffle)
	assert.False(t, s.Loaded())
	assert.True(t, s.View().Empty())
}

func TestSession_Load(t *testing.T) {
	s := loadedSession(t)

	assert.True(t, s.Loaded())
	assert.Equal(t, "class.csv", s.FileName)
	assert.Equal(t, 5, s.Data.Len())
	assert.Equal(t, 5, s.MaxGroupSize)
	assert.Equal(t, 4, s.GroupSize)
	assert.Equal(t, "Loaded 5 students", s.Status)
	assert.Equal(t, []string{"name", "grade"}, s.View().Headers)
}

func TestSession_LoadClampsGroupSize(t *testing.T) {
	s := NewSession(SessionOptions{GroupSize: 10})
	require.NoError(t, s.Load("small.csv", strings.NewReader("name\nA\nB\nC\n")))

	assert.Equal(t, 3, s.MaxGroupSize)
	assert.Equal(t, 3, s.GroupSize)
}

func TestSession_LoadDiscardsGroups(t *testing.T) {
	s := loadedSession(t)
	require.NoError(t, s.CreateGroups(2, false))
	require.NotNil(t, s.Grouped)

	require.NoError(t, s.Load("other.csv", strings.NewReader("name\nZed\nYul\n")))
	assert.Nil(t, s.Grouped)
	assert.Equal(t, 2, s.Data.Len())
}

func TestSession_LoadFailureKeepsState(t *testing.T) {
	s := loadedSession(t)
	require.NoError(t, s.CreateGroups(2, false))
	before, grouped := s.Data, s.Grouped

	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{"unsupported", "notes.txt", rosterCSV, ErrUnsupportedExtension},
		{"empty", "empty.csv", "name\n", ErrEmptyInput},
		{"corrupt", "broken.xlsx", "not a workbook", ErrFileRead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Load(tt.file, strings.NewReader(tt.content))
			require.ErrorIs(t, err, tt.want)

			assert.Same(t, before, s.Data)
			assert.Same(t, grouped, s.Grouped)
			assert.Equal(t, "class.csv", s.FileName)
		})
	}
}

func TestSession_LoadTooLarge(t *testing.T) {
	s := NewSession(SessionOptions{MaxFileSize: 16})

	err := s.Load("big.csv", strings.NewReader(rosterCSV))
	require.ErrorIs(t, err, ErrFileTooLarge)
	assert.Equal(t, "FILE001", MapError(err).Code)
	assert.False(t, s.Loaded())
}

func TestSession_Clear(t *testing.T) {
	s := loadedSession(t)
	require.NoError(t, s.CreateGroups(2, true))

	s.Clear()

	assert.False(t, s.Loaded())
	assert.Nil(t, s.Data)
	assert.Nil(t, s.Grouped)
	assert.Empty(t, s.FileName)
	assert.Equal(t, DefaultGroupSizeLimit, s.MaxGroupSize)
}

func TestSession_CreateGroups(t *testing.T) {
	s := loadedSession(t)

	require.NoError(t, s.CreateGroups(2, false))

	assert.Equal(t, 5, s.Grouped.Len())
	assert.Equal(t, 2, s.GroupSize)
	assert.False(t, s.Shuffle)
	assert.Equal(t, "Created 2 groups", s.Status)
	assert.Equal(t, []string{"name", "grade", "GROUP"}, s.View().Headers)
	assert.Equal(t, 5, s.Data.Len(), "loaded roster kept")
	assert.False(t, s.Data.Grouped)
}

func TestSession_CreateGroupsErrors(t *testing.T) {
	t.Run("nothing loaded", func(t *testing.T) {
		s := NewSession(SessionOptions{})
		assert.ErrorIs(t, s.CreateGroups(2, true), ErrNoDataLoaded)
	})

	t.Run("invalid size keeps earlier groups", func(t *testing.T) {
		s := loadedSession(t)
		require.NoError(t, s.CreateGroups(2, false))
		grouped := s.Grouped

		for _, size := range []int{0, -3, 6} {
			assert.ErrorIs(t, s.CreateGroups(size, false), ErrInvalidGroupSize)
		}
		assert.Same(t, grouped, s.Grouped)
		assert.Equal(t, 2, s.GroupSize)
	})
}

func TestSession_CreateGroupsRespectsLimit(t *testing.T) {
	s := NewSession(SessionOptions{GroupSizeLimit: 3})
	require.NoError(t, s.Load("class.csv", strings.NewReader(rosterCSV)))
	require.Equal(t, 3, s.MaxGroupSize)

	err := s.CreateGroups(4, false)
	var sizeErr *GroupSizeError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, 3, sizeErr.Max)
	assert.Nil(t, s.Grouped)

	require.NoError(t, s.CreateGroups(3, false))
}

func TestSession_StepGroupSize(t *testing.T) {
	s := loadedSession(t)

	assert.Equal(t, 5, s.StepGroupSize(1))
	assert.Equal(t, 5, s.StepGroupSize(1))
	assert.Equal(t, 1, s.StepGroupSize(-10))
	assert.Equal(t, 2, s.StepGroupSize(1))
}

func TestSession_SelectFormat(t *testing.T) {
	s := NewSession(SessionOptions{})

	require.NoError(t, s.SelectFormat("CSV"))
	assert.Equal(t, FormatCSV, s.Format)

	assert.ErrorIs(t, s.SelectFormat("docx"), ErrUnsupportedExtension)
	assert.Equal(t, FormatCSV, s.Format)
}

func TestSession_Save(t *testing.T) {
	s := loadedSession(t)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	_, err := s.Save(now)
	require.ErrorIs(t, err, ErrNoDataToExport)

	require.NoError(t, s.CreateGroups(5, false))
	require.NoError(t, s.SelectFormat(FormatCSV))

	exp, err := s.Save(now)
	require.NoError(t, err)
	assert.Equal(t, "grouped_2025-01-02T03-04-05.csv", exp.Filename)
	assert.True(t, strings.HasPrefix(string(exp.Data), "name,grade,GROUP\n"))
}

func TestSession_Flash(t *testing.T) {
	s := NewSession(SessionOptions{})
	assert.Nil(t, s.TakeFlash())

	s.Notify(Success(MsgGroupsCreated))
	n := s.TakeFlash()
	require.NotNil(t, n)
	assert.Equal(t, LevelSuccess, n.Level)
	assert.Equal(t, MsgGroupsCreated, n.Message)
	assert.Nil(t, s.TakeFlash())
}
