package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/db"
	"github.com/lusapp/backend/internal/pkg/apperrors"
)

// enrollmentWorld is an in-memory stand-in for the stores the coordinator
// touches. All store methods ignore the tx argument; atomicity is simulated
// by the tx runner below through snapshot and restore.
type enrollmentWorld struct {
	users        map[int64]*models.User
	races        map[int64]*models.Race
	groupByRace  map[int64]int64
	nextGroupID  int64
	members      map[int64]map[int64]models.GroupRole
	memberCounts map[int64]int
	posts        []*models.Post

	createForRaceErr error
	postCreateErr    error

	insertTxDepth int
}

func newEnrollmentWorld() *enrollmentWorld {
	return &enrollmentWorld{
		users:        make(map[int64]*models.User),
		races:        make(map[int64]*models.Race),
		groupByRace:  make(map[int64]int64),
		nextGroupID:  100,
		members:      make(map[int64]map[int64]models.GroupRole),
		memberCounts: make(map[int64]int),
	}
}

func (w *enrollmentWorld) addUser(id int64) {
	w.users[id] = &models.User{ID: id, Name: "user", JoinedRaces: []int64{}, CompletedRaces: []int64{}}
}

func (w *enrollmentWorld) addRace(id int64, name string) {
	w.races[id] = &models.Race{ID: id, Name: name, Sport: "running", Status: models.RaceStatusApproved}
}

func (w *enrollmentWorld) clone() *enrollmentWorld {
	c := newEnrollmentWorld()
	c.nextGroupID = w.nextGroupID
	for id, u := range w.users {
		cp := *u
		cp.JoinedRaces = append([]int64{}, u.JoinedRaces...)
		cp.CompletedRaces = append([]int64{}, u.CompletedRaces...)
		c.users[id] = &cp
	}
	for id, r := range w.races {
		cp := *r
		cp.RegisteredUserIDs = append([]int64{}, r.RegisteredUserIDs...)
		c.races[id] = &cp
	}
	for raceID, groupID := range w.groupByRace {
		c.groupByRace[raceID] = groupID
	}
	for groupID, roles := range w.members {
		cp := make(map[int64]models.GroupRole, len(roles))
		for userID, role := range roles {
			cp[userID] = role
		}
		c.members[groupID] = cp
	}
	for groupID, n := range w.memberCounts {
		c.memberCounts[groupID] = n
	}
	c.posts = append([]*models.Post{}, w.posts...)
	return c
}

func (w *enrollmentWorld) restore(snapshot *enrollmentWorld) {
	w.users = snapshot.users
	w.races = snapshot.races
	w.groupByRace = snapshot.groupByRace
	w.nextGroupID = snapshot.nextGroupID
	w.members = snapshot.members
	w.memberCounts = snapshot.memberCounts
	w.posts = snapshot.posts
}

// --- store implementations ---

func (w *enrollmentWorld) GetByID(ctx context.Context, tx pgx.Tx, id int64) (*models.User, error) {
	user, ok := w.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func addToSet(set []int64, value int64) []int64 {
	for _, v := range set {
		if v == value {
			return set
		}
	}
	return append(set, value)
}

func removeFromSet(set []int64, value int64) []int64 {
	out := set[:0]
	for _, v := range set {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

func (w *enrollmentWorld) AddJoinedRace(ctx context.Context, tx pgx.Tx, userID, raceID int64) ([]int64, error) {
	user, ok := w.users[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	user.JoinedRaces = addToSet(user.JoinedRaces, raceID)
	return user.JoinedRaces, nil
}

func (w *enrollmentWorld) RemoveJoinedRace(ctx context.Context, tx pgx.Tx, userID, raceID int64) ([]int64, error) {
	user, ok := w.users[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	user.JoinedRaces = removeFromSet(user.JoinedRaces, raceID)
	return user.JoinedRaces, nil
}

func (w *enrollmentWorld) AddCompletedRace(ctx context.Context, tx pgx.Tx, userID, raceID int64) ([]int64, bool, error) {
	user, ok := w.users[userID]
	if !ok {
		return nil, false, apperrors.ErrUserNotFound
	}
	before := len(user.CompletedRaces)
	user.CompletedRaces = addToSet(user.CompletedRaces, raceID)
	added := len(user.CompletedRaces) > before
	if added {
		user.TotalRaces++
	}
	return user.CompletedRaces, added, nil
}

type raceWorld struct{ *enrollmentWorld }

func (w raceWorld) GetByID(ctx context.Context, tx pgx.Tx, id int64) (*models.Race, error) {
	race, ok := w.races[id]
	if !ok {
		return nil, apperrors.ErrRaceNotFound
	}
	return race, nil
}

func (w raceWorld) AddRegisteredUser(ctx context.Context, tx pgx.Tx, raceID, userID int64) ([]int64, error) {
	race := w.races[raceID]
	race.RegisteredUserIDs = addToSet(race.RegisteredUserIDs, userID)
	return race.RegisteredUserIDs, nil
}

func (w raceWorld) RemoveRegisteredUser(ctx context.Context, tx pgx.Tx, raceID, userID int64) ([]int64, error) {
	race := w.races[raceID]
	race.RegisteredUserIDs = removeFromSet(race.RegisteredUserIDs, userID)
	return race.RegisteredUserIDs, nil
}

func (w *enrollmentWorld) CreateForRace(ctx context.Context, tx pgx.Tx, group *models.Group) (int64, bool, error) {
	if ft, ok := tx.(fakeTx); ok {
		w.insertTxDepth = ft.depth
	}
	if w.createForRaceErr != nil {
		err := w.createForRaceErr
		w.createForRaceErr = nil
		return 0, false, err
	}
	if _, exists := w.groupByRace[*group.RaceID]; exists {
		return 0, false, nil
	}
	w.nextGroupID++
	w.groupByRace[*group.RaceID] = w.nextGroupID
	w.members[w.nextGroupID] = make(map[int64]models.GroupRole)
	return w.nextGroupID, true, nil
}

func (w *enrollmentWorld) GetIDByRaceID(ctx context.Context, tx pgx.Tx, raceID int64) (int64, error) {
	groupID, ok := w.groupByRace[raceID]
	if !ok {
		return 0, apperrors.ErrGroupNotFound
	}
	return groupID, nil
}

func (w *enrollmentWorld) RecomputeMemberCount(ctx context.Context, tx pgx.Tx, groupID int64) (int, error) {
	w.memberCounts[groupID] = len(w.members[groupID])
	return w.memberCounts[groupID], nil
}

func (w *enrollmentWorld) AddMember(ctx context.Context, tx pgx.Tx, groupID, userID int64, role models.GroupRole) (bool, error) {
	roles, ok := w.members[groupID]
	if !ok {
		roles = make(map[int64]models.GroupRole)
		w.members[groupID] = roles
	}
	if _, exists := roles[userID]; exists {
		return false, nil
	}
	roles[userID] = role
	return true, nil
}

func (w *enrollmentWorld) Create(ctx context.Context, tx pgx.Tx, post *models.Post) (int64, error) {
	if w.postCreateErr != nil {
		return 0, w.postCreateErr
	}
	post.ID = int64(len(w.posts) + 1)
	w.posts = append(w.posts, post)
	return post.ID, nil
}

func (w *enrollmentWorld) HasCompletionPost(ctx context.Context, tx pgx.Tx, userID, raceID int64) (bool, error) {
	for _, post := range w.posts {
		if post.Type == models.PostTypeCompletion && post.UserID == userID && post.RaceID != nil && *post.RaceID == raceID {
			return true, nil
		}
	}
	return false, nil
}

// fakeTx satisfies pgx.Tx so workflows that open savepoints can run against
// the in-memory stores. Begin hands out a handle one level deeper; everything
// else is a no-op because the stores ignore the handle.
type fakeTx struct{ depth int }

func (t fakeTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return fakeTx{depth: t.depth + 1}, nil
}
func (t fakeTx) Commit(ctx context.Context) error   { return nil }
func (t fakeTx) Rollback(ctx context.Context) error { return nil }
func (t fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t fakeTx) Conn() *pgx.Conn                                               { return nil }

// worldTxRunner snapshots the world before the callback and restores it when
// the callback fails, mimicking a rolled-back transaction.
type worldTxRunner struct {
	world *enrollmentWorld
}

func (r *worldTxRunner) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	snapshot := r.world.clone()
	if err := fn(ctx, fakeTx{}); err != nil {
		r.world.restore(snapshot)
		return err
	}
	return nil
}

func newTestEnrollmentService(world *enrollmentWorld) EnrollmentService {
	return NewEnrollmentService(
		&worldTxRunner{world: world},
		world,
		raceWorld{world},
		world,
		world,
		world,
		nil,
		zerolog.Nop(),
	)
}

func countPosts(world *enrollmentWorld, postType models.PostType) int {
	n := 0
	for _, post := range world.posts {
		if post.Type == postType {
			n++
		}
	}
	return n
}

func TestJoinRaceFirstJoin(t *testing.T) {
	world := newEnrollmentWorld()
	world.addUser(1)
	world.addRace(10, "Berlin Marathon")
	svc := newTestEnrollmentService(world)

	resp, err := svc.JoinRace(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("JoinRace: %v", err)
	}

	if len(resp.JoinedRaces) != 1 || resp.JoinedRaces[0] != 10 {
		t.Errorf("joinedRaces = %v, want [10]", resp.JoinedRaces)
	}
	if resp.GroupID == 0 {
		t.Error("expected a provisioned group ID")
	}
	if role := world.members[resp.GroupID][1]; role != models.GroupRoleMember {
		t.Errorf("role = %q, want member", role)
	}
	if world.memberCounts[resp.GroupID] != 1 {
		t.Errorf("memberCount = %d, want 1", world.memberCounts[resp.GroupID])
	}
	if got := countPosts(world, models.PostTypeSignup); got != 1 {
		t.Errorf("signup posts = %d, want 1", got)
	}
	// The group insert runs one level below the enrollment transaction so a
	// raised unique violation cannot poison it
	if world.insertTxDepth != 1 {
		t.Errorf("group insert tx depth = %d, want 1 (savepoint)", world.insertTxDepth)
	}
}

func TestJoinRaceIsIdempotentExceptAnnouncement(t *testing.T) {
	world := newEnrollmentWorld()
	world.addUser(1)
	world.addRace(10, "Berlin Marathon")
	svc := newTestEnrollmentService(world)

	first, err := svc.JoinRace(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("first JoinRace: %v", err)
	}
	second, err := svc.JoinRace(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("second JoinRace: %v", err)
	}

	if second.GroupID != first.GroupID {
		t.Errorf("groupID changed across joins: %d then %d", first.GroupID, second.GroupID)
	}
	if len(second.JoinedRaces) != 1 {
		t.Errorf("joinedRaces = %v, want a single entry", second.JoinedRaces)
	}
	if world.memberCounts[first.GroupID] != 1 {
		t.Errorf("memberCount = %d, want 1", world.memberCounts[first.GroupID])
	}
	// The announcement is the one non-idempotent piece: one post per join
	if got := countPosts(world, models.PostTypeSignup); got != 2 {
		t.Errorf("signup posts = %d, want 2", got)
	}
}

func TestJoinRaceSharesGroupAcrossUsers(t *testing.T) {
	world := newEnrollmentWorld()
	world.addUser(1)
	world.addUser(2)
	world.addRace(10, "Berlin Marathon")
	svc := newTestEnrollmentService(world)

	first, err := svc.JoinRace(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("user 1 JoinRace: %v", err)
	}
	second, err := svc.JoinRace(context.Background(), 10, 2)
	if err != nil {
		t.Fatalf("user 2 JoinRace: %v", err)
	}

	if first.GroupID != second.GroupID {
		t.Errorf("users got different groups: %d and %d", first.GroupID, second.GroupID)
	}
	if world.memberCounts[first.GroupID] != 2 {
		t.Errorf("memberCount = %d, want 2", world.memberCounts[first.GroupID])
	}
}

func TestJoinRaceRecoversFromInsertRace(t *testing.T) {
	world := newEnrollmentWorld()
	world.addUser(1)
	world.addRace(10, "Berlin Marathon")

	// Someone else's insert won between our conflict check and insert: the
	// store reports a unique violation and the coordinator must re-read.
	world.groupByRace[10] = 555
	world.members[555] = make(map[int64]models.GroupRole)
	world.createForRaceErr = &pgconn.PgError{Code: "23505"}

	svc := newTestEnrollmentService(world)

	resp, err := svc.JoinRace(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("JoinRace: %v", err)
	}
	if resp.GroupID != 555 {
		t.Errorf("groupID = %d, want the winner's 555", resp.GroupID)
	}
	if world.insertTxDepth != 1 {
		t.Errorf("group insert tx depth = %d, want 1 (savepoint)", world.insertTxDepth)
	}
	if world.memberCounts[555] != 1 {
		t.Errorf("memberCount = %d, want 1 after linking into the winner's group", world.memberCounts[555])
	}
}

func TestJoinRaceRollsBackOnLateFailure(t *testing.T) {
	world := newEnrollmentWorld()
	world.addUser(1)
	world.addRace(10, "Berlin Marathon")
	world.postCreateErr = errors.New("insert failed")

	svc := newTestEnrollmentService(world)

	if _, err := svc.JoinRace(context.Background(), 10, 1); err == nil {
		t.Fatal("expected JoinRace to fail")
	}

	// The announcement failed last; nothing earlier may survive
	if len(world.users[1].JoinedRaces) != 0 {
		t.Errorf("joinedRaces = %v, want empty after rollback", world.users[1].JoinedRaces)
	}
	if len(world.races[10].RegisteredUserIDs) != 0 {
		t.Errorf("registeredUserIds = %v, want empty after rollback", world.races[10].RegisteredUserIDs)
	}
	if len(world.groupByRace) != 0 {
		t.Errorf("groupByRace = %v, want no provisioned group after rollback", world.groupByRace)
	}
	if len(world.posts) != 0 {
		t.Errorf("posts = %d, want 0 after rollback", len(world.posts))
	}
}

func TestJoinRaceValidation(t *testing.T) {
	world := newEnrollmentWorld()
	world.addUser(1)
	svc := newTestEnrollmentService(world)

	if _, err := svc.JoinRace(context.Background(), 0, 1); !errors.Is(err, apperrors.ErrInvalidRaceID) {
		t.Errorf("raceID 0: err = %v, want ErrInvalidRaceID", err)
	}
	if _, err := svc.JoinRace(context.Background(), -3, 1); !errors.Is(err, apperrors.ErrInvalidRaceID) {
		t.Errorf("negative raceID: err = %v, want ErrInvalidRaceID", err)
	}
	if _, err := svc.JoinRace(context.Background(), 99, 1); !errors.Is(err, apperrors.ErrRaceNotFound) {
		t.Errorf("missing race: err = %v, want ErrRaceNotFound", err)
	}
}

func TestLeaveRaceKeepsGroupMembership(t *testing.T) {
	world := newEnrollmentWorld()
	world.addUser(1)
	world.addRace(10, "Berlin Marathon")
	svc := newTestEnrollmentService(world)

	joined, err := svc.JoinRace(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("JoinRace: %v", err)
	}

	resp, err := svc.LeaveRace(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("LeaveRace: %v", err)
	}

	if len(resp.JoinedRaces) != 0 {
		t.Errorf("joinedRaces = %v, want empty", resp.JoinedRaces)
	}
	if len(world.races[10].RegisteredUserIDs) != 0 {
		t.Errorf("registeredUserIds = %v, want empty", world.races[10].RegisteredUserIDs)
	}
	// Leaving the race does not leave the group
	if _, stillMember := world.members[joined.GroupID][1]; !stillMember {
		t.Error("group membership should survive leaving the race")
	}
}

func TestLeaveRaceUnknownRace(t *testing.T) {
	world := newEnrollmentWorld()
	world.addUser(1)
	svc := newTestEnrollmentService(world)

	if _, err := svc.LeaveRace(context.Background(), 99, 1); !errors.Is(err, apperrors.ErrRaceNotFound) {
		t.Errorf("err = %v, want ErrRaceNotFound", err)
	}
}

func TestCompleteRaceFirstTime(t *testing.T) {
	world := newEnrollmentWorld()
	world.addUser(1)
	world.addRace(10, "Berlin Marathon")
	svc := newTestEnrollmentService(world)

	resp, err := svc.CompleteRace(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("CompleteRace: %v", err)
	}

	if len(resp.CompletedRaces) != 1 || resp.CompletedRaces[0] != 10 {
		t.Errorf("completedRaces = %v, want [10]", resp.CompletedRaces)
	}
	if resp.TotalRaces != 1 {
		t.Errorf("totalRaces = %d, want 1", resp.TotalRaces)
	}
	if got := countPosts(world, models.PostTypeCompletion); got != 1 {
		t.Errorf("completion posts = %d, want 1", got)
	}
}

func TestCompleteRaceTwiceIsFullyDeduplicated(t *testing.T) {
	world := newEnrollmentWorld()
	world.addUser(1)
	world.addRace(10, "Berlin Marathon")
	svc := newTestEnrollmentService(world)

	if _, err := svc.CompleteRace(context.Background(), 10, 1); err != nil {
		t.Fatalf("first CompleteRace: %v", err)
	}
	resp, err := svc.CompleteRace(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("second CompleteRace: %v", err)
	}

	if resp.TotalRaces != 1 {
		t.Errorf("totalRaces = %d, want 1 after repeat completion", resp.TotalRaces)
	}
	if len(resp.CompletedRaces) != 1 {
		t.Errorf("completedRaces = %v, want one entry", resp.CompletedRaces)
	}
	// Unlike signups, completion announcements never repeat
	if got := countPosts(world, models.PostTypeCompletion); got != 1 {
		t.Errorf("completion posts = %d, want 1", got)
	}
}
