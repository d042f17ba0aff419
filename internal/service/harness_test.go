package service

import (
	"context"
	"path/filepath"
	"time"

	"github.com/Baaaki/inkwell/internal/audit"
	"github.com/Baaaki/inkwell/internal/repository"
	"github.com/Baaaki/inkwell/internal/session"
	"github.com/Baaaki/inkwell/internal/testutil"
	"github.com/stretchr/testify/suite"
)

// serviceSuite wires every service against an in-memory database
type serviceSuite struct {
	suite.Suite
	testDB   *testutil.TestDatabase
	journal  *audit.Journal
	sessions *session.Manager
	ctx      context.Context

	auth     *AuthService
	posts    *PostService
	comments *CommentService
	users    *UserService
	stats    *StatsService
}

func (s *serviceSuite) SetupSuite() {
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.ctx = context.Background()

	journal, err := audit.Open(filepath.Join(s.T().TempDir(), "audit.log"))
	s.Require().NoError(err)
	s.journal = journal

	store, err := session.NewMemoryStore(100)
	s.Require().NoError(err)
	s.sessions = session.NewManager(store, time.Hour, false)

	userRepo := repository.NewUserRepository(s.testDB.DB)
	postRepo := repository.NewPostRepository(s.testDB.DB)
	commentRepo := repository.NewCommentRepository(s.testDB.DB)

	s.auth = NewAuthService(userRepo, s.sessions)
	s.posts = NewPostService(postRepo)
	s.comments = NewCommentService(commentRepo, postRepo)
	s.users = NewUserService(userRepo, s.journal, s.sessions)
	s.stats = NewStatsService(userRepo, postRepo, commentRepo)
}

func (s *serviceSuite) TearDownSuite() {
	s.journal.Close()
	s.testDB.Teardown(s.T())
}

func (s *serviceSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}
