package polls

import (
	"errors"
	"sync"
	"time"

	"github.com/bookclub/bookpoll/modules/auth"
	"gorm.io/gorm"
)

// Service mediates persistence for polls and groups. One lock guards
// vote submission and closing for every poll in the process: at club
// scale the serialization is unnoticeable, and a single section keeps
// the no-lost-update invariant trivial to verify. This only holds
// inside one running instance; running several instances against the
// same database is unsafe for concurrent voting.
type Service struct {
	db         *gorm.DB
	submitLock sync.Mutex
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create persists a new poll as given. Validation is the caller's job.
func (s *Service) Create(poll *Poll) error {
	return s.db.Create(poll).Error
}

func (s *Service) Get(id uint) (*Poll, error) {
	poll := &Poll{}
	err := s.db.
		Preload("Owner").
		Preload("Group").
		Preload("Books").
		Preload("Votes").
		Preload("Votes.User").
		First(poll, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return poll, nil
}

func (s *Service) All() ([]Poll, error) {
	var list []Poll
	err := s.db.
		Preload("Owner").
		Preload("Group").
		Preload("Books").
		Order("id desc").
		Find(&list).Error
	return list, err
}

// Submit appends one user's batch of votes to the poll. The critical
// section spans exactly reload, recheck, and persist; callers must do
// any network work (issue lookups, notifications) outside it. A failed
// persist leaves the stored poll untouched because only the reloaded
// local copy was mutated.
func (s *Service) Submit(pollId uint, user *auth.User, bookIds []uint) (*Poll, error) {
	s.submitLock.Lock()
	defer s.submitLock.Unlock()

	poll, err := s.Get(pollId)
	if err != nil {
		return nil, err
	}

	if poll.State != StateOpen {
		return nil, ErrPollClosed
	}
	if poll.IsVoted(user) {
		return nil, ErrAlreadyVoted
	}
	if len(bookIds) != poll.Doubles {
		return nil, ErrWrongVoteCount
	}

	seen := make(map[uint]bool)
	votes := make([]Vote, 0, len(bookIds))
	for _, id := range bookIds {
		if seen[id] {
			return nil, ErrWrongVoteCount
		}
		seen[id] = true
		if !poll.hasBook(&Book{Model: gorm.Model{ID: id}}) {
			return nil, ErrBookNotInPoll
		}
		votes = append(votes, Vote{PollID: poll.ID, UserID: user.ID, BookID: id})
	}

	if err = s.db.Create(&votes).Error; err != nil {
		return nil, err
	}

	for i := range votes {
		votes[i].User = *user
	}
	poll.Votes = append(poll.Votes, votes...)
	return poll, nil
}

// Close transitions the poll to CLOSED, stamps the end date, and
// persists the winner judged from the final vote set. It takes the
// same lock as Submit so a racing vote can never land between the
// final tally and the state change.
func (s *Service) Close(pollId uint, user *auth.User) (*Poll, error) {
	s.submitLock.Lock()
	defer s.submitLock.Unlock()

	poll, err := s.Get(pollId)
	if err != nil {
		return nil, err
	}

	if poll.State == StateClosed {
		return nil, ErrPollClosed
	}
	if !poll.IsOwner(user) {
		return nil, ErrNotOwner
	}

	now := time.Now()
	var winId *uint
	winner := poll.JudgeWinner()
	if winner != nil {
		winId = &winner.ID
	}

	err = s.db.Model(poll).Updates(map[string]interface{}{
		"state":       StateClosed,
		"end":         now,
		"win_book_id": winId,
	}).Error
	if err != nil {
		return nil, err
	}

	poll.State = StateClosed
	poll.End = now
	poll.WinBookID = winId
	return poll, nil
}

// BootstrapDefaultGroup runs once at startup. An empty store gets the
// configured default group (owner null) and any pre-existing polls are
// backfilled onto it. A non-empty store must already hold exactly one
// ownerless group; its fields are resynced to the configuration when
// they drift. Zero or multiple ownerless groups is corruption and the
// caller must refuse to serve.
func (s *Service) BootstrapDefaultGroup(def Group) (*Group, error) {
	def.OwnerID = nil
	def.Owner = nil

	var count int64
	if err := s.db.Model(&Group{}).Count(&count).Error; err != nil {
		return nil, err
	}

	if count == 0 {
		if err := s.db.Create(&def).Error; err != nil {
			return nil, err
		}
		err := s.db.Model(&Poll{}).
			Where("group_id IS NULL").
			Update("group_id", def.ID).Error
		if err != nil {
			return nil, err
		}
		return &def, nil
	}

	var defaults []Group
	if err := s.db.Where("owner_id IS NULL").Find(&defaults).Error; err != nil {
		return nil, err
	}
	if len(defaults) != 1 {
		return nil, ErrDefaultGroupMissing
	}

	// keep the stored row in step with the configured values, id aside
	current := def
	current.Model = defaults[0].Model
	if current != defaults[0] {
		if err := s.db.Save(&current).Error; err != nil {
			return nil, err
		}
	}
	return &current, nil
}

func (s *Service) Groups() ([]Group, error) {
	var list []Group
	err := s.db.Preload("Owner").Find(&list).Error
	return list, err
}

func (s *Service) DefaultGroup() (*Group, error) {
	group := &Group{}
	err := s.db.Where("owner_id IS NULL").First(group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDefaultGroupMissing
	}
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Service) GroupByName(organization, repository string) (*Group, error) {
	group := &Group{}
	err := s.db.
		Where(&Group{Organization: organization, Repository: repository}).
		First(group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return group, nil
}

// AddGroup persists a member-created group, rejecting a duplicate of
// an existing organization/repository pair.
func (s *Service) AddGroup(group *Group) error {
	existing := &Group{}
	err := s.db.
		Where(&Group{Organization: group.Organization, Repository: group.Repository}).
		First(existing).Error
	if err == nil {
		return ErrGroupExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.db.Create(group).Error
}
