package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/app/models/dto"
	"github.com/lusapp/backend/internal/db"
	"github.com/lusapp/backend/internal/pkg/apperrors"
	"github.com/lusapp/backend/internal/pkg/auth"
)

// groupWorld is an in-memory stand-in for the group, membership and chat
// stores. Atomicity is simulated by the tx runner through snapshot and
// restore, like the enrollment world above.
type groupWorld struct {
	groups       map[int64]*models.Group
	nextGroupID  int64
	members      map[int64]map[int64]models.GroupRole
	memberCounts map[int64]int
	unread       map[int64]int
	lastMessages map[int64]*dto.GroupMessagePreview

	addMemberErr error
	createTxNil  bool
}

func newGroupWorld() *groupWorld {
	return &groupWorld{
		groups:       make(map[int64]*models.Group),
		nextGroupID:  200,
		members:      make(map[int64]map[int64]models.GroupRole),
		memberCounts: make(map[int64]int),
		unread:       make(map[int64]int),
		lastMessages: make(map[int64]*dto.GroupMessagePreview),
	}
}

func (w *groupWorld) addGroup(name string, passwordHash *string) int64 {
	w.nextGroupID++
	w.groups[w.nextGroupID] = &models.Group{
		ID:           w.nextGroupID,
		Name:         name,
		SportType:    "running",
		PasswordHash: passwordHash,
	}
	w.members[w.nextGroupID] = make(map[int64]models.GroupRole)
	return w.nextGroupID
}

func (w *groupWorld) addMemberRow(groupID, userID int64, role models.GroupRole) {
	w.members[groupID][userID] = role
	w.memberCounts[groupID] = len(w.members[groupID])
	w.groups[groupID].MemberCount = w.memberCounts[groupID]
}

func (w *groupWorld) clone() *groupWorld {
	c := newGroupWorld()
	c.nextGroupID = w.nextGroupID
	for id, g := range w.groups {
		cp := *g
		c.groups[id] = &cp
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
	return c
}

func (w *groupWorld) restore(snapshot *groupWorld) {
	w.groups = snapshot.groups
	w.nextGroupID = snapshot.nextGroupID
	w.members = snapshot.members
	w.memberCounts = snapshot.memberCounts
}

// --- groupStore ---

func (w *groupWorld) Create(ctx context.Context, tx pgx.Tx, group *models.Group) (int64, error) {
	w.createTxNil = tx == nil
	w.nextGroupID++
	group.ID = w.nextGroupID
	cp := *group
	w.groups[group.ID] = &cp
	w.members[group.ID] = make(map[int64]models.GroupRole)
	return group.ID, nil
}

func (w *groupWorld) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	group, ok := w.groups[id]
	if !ok {
		return nil, apperrors.ErrGroupNotFound
	}
	cp := *group
	return &cp, nil
}

func (w *groupWorld) GetByRaceID(ctx context.Context, raceID int64) (*models.Group, error) {
	for _, group := range w.groups {
		if group.RaceID != nil && *group.RaceID == raceID {
			cp := *group
			return &cp, nil
		}
	}
	return nil, apperrors.ErrGroupNotFound
}

func (w *groupWorld) Search(ctx context.Context, search, sportType, city string, limit int) ([]*models.Group, error) {
	out := make([]*models.Group, 0, len(w.groups))
	for _, group := range w.groups {
		cp := *group
		out = append(out, &cp)
	}
	return out, nil
}

func (w *groupWorld) ListByUserID(ctx context.Context, userID int64) ([]*models.Group, error) {
	var out []*models.Group
	for groupID, roles := range w.members {
		if _, ok := roles[userID]; ok {
			cp := *w.groups[groupID]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (w *groupWorld) RecomputeMemberCount(ctx context.Context, tx pgx.Tx, groupID int64) (int, error) {
	group, ok := w.groups[groupID]
	if !ok {
		return 0, apperrors.ErrGroupNotFound
	}
	w.memberCounts[groupID] = len(w.members[groupID])
	group.MemberCount = w.memberCounts[groupID]
	return w.memberCounts[groupID], nil
}

func (w *groupWorld) Delete(ctx context.Context, groupID int64) error {
	delete(w.groups, groupID)
	delete(w.members, groupID)
	delete(w.memberCounts, groupID)
	return nil
}

// --- groupMemberStore ---

func (w *groupWorld) AddMember(ctx context.Context, tx pgx.Tx, groupID, userID int64, role models.GroupRole) (bool, error) {
	if w.addMemberErr != nil {
		return false, w.addMemberErr
	}
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

func (w *groupWorld) RemoveMember(ctx context.Context, tx pgx.Tx, groupID, userID int64) error {
	delete(w.members[groupID], userID)
	return nil
}

func (w *groupWorld) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	_, ok := w.members[groupID][userID]
	return ok, nil
}

func (w *groupWorld) GetRole(ctx context.Context, groupID, userID int64) (models.GroupRole, error) {
	role, ok := w.members[groupID][userID]
	if !ok {
		return "", apperrors.ErrNotMember
	}
	return role, nil
}

func (w *groupWorld) ListMembers(ctx context.Context, groupID int64) ([]*models.GroupMember, error) {
	var out []*models.GroupMember
	for userID, role := range w.members[groupID] {
		out = append(out, &models.GroupMember{GroupID: groupID, UserID: userID, Role: role})
	}
	return out, nil
}

// --- groupChatStore ---

func (w *groupWorld) UnreadCount(ctx context.Context, groupID, userID int64) (int, error) {
	return w.unread[groupID], nil
}

func (w *groupWorld) TotalUnread(ctx context.Context, userID int64) (int, error) {
	total := 0
	for _, n := range w.unread {
		total += n
	}
	return total, nil
}

func (w *groupWorld) LastMessage(ctx context.Context, groupID int64) (*dto.GroupMessagePreview, error) {
	return w.lastMessages[groupID], nil
}

type groupTxRunner struct {
	world *groupWorld
}

func (r *groupTxRunner) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	snapshot := r.world.clone()
	if err := fn(ctx, fakeTx{}); err != nil {
		r.world.restore(snapshot)
		return err
	}
	return nil
}

func newTestGroupService(world *groupWorld) GroupService {
	return NewGroupService(world, world, world, &groupTxRunner{world: world}, zerolog.Nop())
}

func TestCreateGroupSetsUpOwner(t *testing.T) {
	world := newGroupWorld()
	svc := newTestGroupService(world)

	resp, err := svc.Create(context.Background(), dto.CreateGroupRequest{
		Name:     "Trail Crew",
		Password: "secret",
	}, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if resp.MyRole != models.GroupRoleOwner {
		t.Errorf("myRole = %q, want owner", resp.MyRole)
	}
	if !resp.HasPassword {
		t.Error("hasPassword = false, want true")
	}
	if resp.Group.PasswordHash != nil {
		t.Error("password hash leaked into the response")
	}
	if world.memberCounts[resp.Group.ID] != 1 {
		t.Errorf("memberCount = %d, want 1", world.memberCounts[resp.Group.ID])
	}
	if world.createTxNil {
		t.Error("group insert ran outside the transaction")
	}
}

func TestCreateGroupRollsBackWhenOwnerInsertFails(t *testing.T) {
	world := newGroupWorld()
	world.addMemberErr = errors.New("insert failed")
	svc := newTestGroupService(world)

	if _, err := svc.Create(context.Background(), dto.CreateGroupRequest{Name: "Trail Crew"}, 1); err == nil {
		t.Fatal("expected Create to fail")
	}

	// The owner row failed; the group row may not survive on its own
	if len(world.groups) != 0 {
		t.Errorf("groups = %d, want 0 after rollback", len(world.groups))
	}
}

func TestMembershipChangesRecomputeCount(t *testing.T) {
	tests := []struct {
		name      string
		run       func(svc GroupService, groupID int64) error
		wantErr   error
		wantCount int
	}{
		{
			name: "join recomputes",
			run: func(svc GroupService, groupID int64) error {
				_, err := svc.Join(context.Background(), groupID, 3, "")
				return err
			},
			wantCount: 3,
		},
		{
			name: "leave recomputes",
			run: func(svc GroupService, groupID int64) error {
				return svc.Leave(context.Background(), groupID, 2)
			},
			wantCount: 1,
		},
		{
			name: "owner cannot leave",
			run: func(svc GroupService, groupID int64) error {
				return svc.Leave(context.Background(), groupID, 1)
			},
			wantErr:   apperrors.ErrOwnerCannotLeave,
			wantCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := newGroupWorld()
			groupID := world.addGroup("Trail Crew", nil)
			world.addMemberRow(groupID, 1, models.GroupRoleOwner)
			world.addMemberRow(groupID, 2, models.GroupRoleMember)
			svc := newTestGroupService(world)

			err := tt.run(svc, groupID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if world.memberCounts[groupID] != tt.wantCount {
				t.Errorf("memberCount = %d, want %d", world.memberCounts[groupID], tt.wantCount)
			}
			if world.groups[groupID].MemberCount != tt.wantCount {
				t.Errorf("group.MemberCount = %d, want %d", world.groups[groupID].MemberCount, tt.wantCount)
			}
		})
	}
}

func TestJoinGroupPasswordChecks(t *testing.T) {
	hash, err := auth.HashPassword("letmein")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"missing password", "", apperrors.ErrGroupPasswordNeeded},
		{"wrong password", "nope", apperrors.ErrGroupWrongPassword},
		{"correct password", "letmein", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := newGroupWorld()
			groupID := world.addGroup("Trail Crew", &hash)
			world.addMemberRow(groupID, 1, models.GroupRoleOwner)
			svc := newTestGroupService(world)

			resp, err := svc.Join(context.Background(), groupID, 2, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if _, member := world.members[groupID][2]; member {
					t.Error("rejected join still added the member")
				}
				return
			}
			if resp.MyRole != models.GroupRoleMember {
				t.Errorf("myRole = %q, want member", resp.MyRole)
			}
		})
	}
}

func TestJoinGroupAlreadyMember(t *testing.T) {
	world := newGroupWorld()
	groupID := world.addGroup("Trail Crew", nil)
	world.addMemberRow(groupID, 1, models.GroupRoleOwner)
	world.addMemberRow(groupID, 2, models.GroupRoleMember)
	svc := newTestGroupService(world)

	if _, err := svc.Join(context.Background(), groupID, 2, ""); !errors.Is(err, apperrors.ErrAlreadyMember) {
		t.Errorf("err = %v, want ErrAlreadyMember", err)
	}
}

func TestMembersRequiresMembership(t *testing.T) {
	world := newGroupWorld()
	groupID := world.addGroup("Trail Crew", nil)
	world.addMemberRow(groupID, 1, models.GroupRoleOwner)
	svc := newTestGroupService(world)

	if _, err := svc.Members(context.Background(), groupID, 9); !errors.Is(err, apperrors.ErrNotMember) {
		t.Errorf("err = %v, want ErrNotMember", err)
	}

	members, err := svc.Members(context.Background(), groupID, 1)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if len(members) != 1 {
		t.Errorf("members = %d, want 1", len(members))
	}
}

func TestDeleteGroupOwnerOnly(t *testing.T) {
	world := newGroupWorld()
	groupID := world.addGroup("Trail Crew", nil)
	world.addMemberRow(groupID, 1, models.GroupRoleOwner)
	world.addMemberRow(groupID, 2, models.GroupRoleMember)
	svc := newTestGroupService(world)

	if err := svc.Delete(context.Background(), groupID, 2); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("member delete: err = %v, want ErrPermissionDenied", err)
	}
	if err := svc.Delete(context.Background(), groupID, 1); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, ok := world.groups[groupID]; ok {
		t.Error("group still present after owner delete")
	}
}
