package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/storage/memory"
	"github.com/mcoot/spendboard/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) writeFile(content string) string {
	path := filepath.Join(s.T().TempDir(), "participants.json")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *ServiceSuite) TestLoadFromFile() {
	path := s.writeFile(`[
		{"name": "Alice", "steam_id": "7656", "country_code": "AR"},
		{"name": "Bob", "known_appids": [1, 2]}
	]`)

	n, err := s.service.LoadFromFile(s.ctx, path)
	s.Require().NoError(err)
	s.Equal(2, n)

	list, err := s.storage.ListParticipants(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Alice", list[0].Name)
	s.Equal("AR", list[0].Region())
	s.True(list[0].HasSteam())
	s.Equal([]model.AppID{1, 2}, list[1].KnownAppIDs)
}

func (s *ServiceSuite) TestMissingFileUsesDefaults() {
	n, err := s.service.LoadFromFile(s.ctx, filepath.Join(s.T().TempDir(), "nope.json"))
	s.Require().NoError(err)
	s.Equal(5, n)

	p, err := s.storage.GetParticipant(s.ctx, 5)
	s.Require().NoError(err)
	s.Equal("Rueda Desinflada", p.Name)
}

func (s *ServiceSuite) TestEmptyPathUsesDefaults() {
	n, err := s.service.LoadFromFile(s.ctx, "")
	s.Require().NoError(err)
	s.Equal(len(DefaultParticipants()), n)
}

func (s *ServiceSuite) TestMalformedFile() {
	_, err := s.service.LoadFromFile(s.ctx, s.writeFile(`{not json`))
	s.ErrorIs(err, ErrInvalidSeed)
}

func (s *ServiceSuite) TestNamelessParticipantRejected() {
	_, err := s.service.LoadFromFile(s.ctx, s.writeFile(`[{"name": ""}]`))
	s.ErrorIs(err, ErrInvalidSeed)

	list, _ := s.storage.ListParticipants(s.ctx)
	s.Empty(list)
}

func (s *ServiceSuite) TestSkipsWhenAlreadySeeded() {
	s.Require().NoError(s.storage.SaveParticipant(s.ctx, &model.Participant{Name: "Existing"}))

	n, err := s.service.LoadFromFile(s.ctx, "")
	s.Require().NoError(err)
	s.Equal(0, n)

	list, _ := s.storage.ListParticipants(s.ctx)
	s.Len(list, 1)
}
