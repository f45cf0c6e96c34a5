package store

import (
	"errors"
	"sort"
	"time"

	"github.com/boxhub-dev/boxhub/db"
	"github.com/boxhub-dev/boxhub/internal/models"
	"github.com/boxhub-dev/boxhub/internal/types"
	"gorm.io/gorm"
)

func CreatePoll(title, description string, templateID *uint, createdBy uint) (models.Poll, error) {
	poll := models.Poll{
		Title:       title,
		Description: description,
		TemplateID:  templateID,
		CreatedBy:   createdBy,
		Status:      types.PollStatusActive,
	}

	if err := db.DB.Create(&poll).Error; err != nil {
		return models.Poll{}, err
	}

	return poll, nil
}

func GetPoll(id uint) (models.Poll, error) {
	var poll models.Poll
	err := db.DB.Preload("Options", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("poll_options.id ASC")
	}).First(&poll, id).Error
	return poll, err
}

func ListPolls() ([]models.Poll, error) {
	var polls []models.Poll
	err := db.DB.Order("id DESC").Find(&polls).Error
	return polls, err
}

// ClosePoll transitions an active poll to closed. The transition is one-way;
// closing an already closed poll returns ErrPollReopen.
func ClosePoll(id uint) (models.Poll, error) {
	var poll models.Poll

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&poll, id).Error; err != nil {
			return err
		}

		if poll.Status == types.PollStatusClosed {
			return ErrPollReopen
		}

		poll.Status = types.PollStatusClosed
		return tx.Save(&poll).Error
	})

	if err != nil {
		return models.Poll{}, err
	}

	return poll, nil
}

// DeletePoll removes the poll, its options and every vote on those options as
// a unit.
func DeletePoll(id uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var poll models.Poll

		if err := tx.First(&poll, id).Error; err != nil {
			return err
		}

		var optionIDs []uint

		if err := tx.Model(&models.PollOption{}).
			Where("poll_id = ?", id).
			Pluck("id", &optionIDs).Error; err != nil {
			return err
		}

		if len(optionIDs) > 0 {
			if err := tx.Where("poll_option_id IN ?", optionIDs).
				Delete(&models.PollVote{}).Error; err != nil {
				return err
			}

			if err := tx.Where("poll_id = ?", id).
				Delete(&models.PollOption{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&poll).Error
	})
}

func CreatePollOption(pollID uint, date time.Time, label string) (models.PollOption, error) {
	var poll models.Poll

	if err := db.DB.First(&poll, pollID).Error; err != nil {
		return models.PollOption{}, err
	}

	option := models.PollOption{
		PollID: pollID,
		Date:   date,
		Label:  label,
	}

	if err := db.DB.Create(&option).Error; err != nil {
		return models.PollOption{}, err
	}

	return option, nil
}

func GetPollOption(id uint) (models.PollOption, error) {
	var option models.PollOption
	err := db.DB.First(&option, id).Error
	return option, err
}

// DeletePollOption removes the option and its votes as a unit.
func DeletePollOption(pollID, optionID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var option models.PollOption

		if err := tx.Where("id = ? AND poll_id = ?", optionID, pollID).
			First(&option).Error; err != nil {
			return err
		}

		if err := tx.Where("poll_option_id = ?", optionID).
			Delete(&models.PollVote{}).Error; err != nil {
			return err
		}

		return tx.Delete(&option).Error
	})
}

// CastVote records a vote for an option. Voting twice on the same option is
// idempotent and returns the existing vote. Votes are only accepted on active
// polls.
func CastVote(optionID, userID uint) (models.PollVote, error) {
	var vote models.PollVote

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var option models.PollOption

		if err := tx.First(&option, optionID).Error; err != nil {
			return err
		}

		var poll models.Poll

		if err := tx.First(&poll, option.PollID).Error; err != nil {
			return err
		}

		if poll.Status != types.PollStatusActive {
			return ErrPollClosed
		}

		err := tx.Where("poll_option_id = ? AND user_id = ?", optionID, userID).
			First(&vote).Error

		if err == nil {
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		vote = models.PollVote{
			PollOptionID: optionID,
			UserID:       userID,
		}

		return tx.Create(&vote).Error
	})

	if err != nil {
		return models.PollVote{}, err
	}

	return vote, nil
}

func RemoveVote(optionID, userID uint) error {
	result := db.DB.Where("poll_option_id = ? AND user_id = ?", optionID, userID).
		Delete(&models.PollVote{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// GetUserVotesForPoll returns the option ids within the poll that the user
// has voted for.
func GetUserVotesForPoll(pollID, userID uint) ([]uint, error) {
	var optionIDs []uint

	err := db.DB.Model(&models.PollVote{}).
		Joins("JOIN poll_options ON poll_options.id = poll_votes.poll_option_id").
		Where("poll_options.poll_id = ? AND poll_votes.user_id = ?", pollID, userID).
		Pluck("poll_votes.poll_option_id", &optionIDs).Error

	return optionIDs, err
}

type OptionTally struct {
	Option    models.PollOption
	VoteCount int64
	Voters    []string
}

type PollTally struct {
	Options []OptionTally
	// TotalVoters counts distinct users across all options; a voter who
	// picked two dates still counts once.
	TotalVoters int64
}

// TallyPoll computes vote counts on read. Options are ordered by vote count
// descending, ties keeping insertion order.
func TallyPoll(pollID uint) (PollTally, error) {
	var options []models.PollOption

	err := db.DB.Where("poll_id = ?", pollID).
		Order("id ASC").
		Find(&options).Error

	if err != nil {
		return PollTally{}, err
	}

	tally := PollTally{Options: make([]OptionTally, 0, len(options))}

	for _, option := range options {
		var count int64

		if err := db.DB.Model(&models.PollVote{}).
			Where("poll_option_id = ?", option.ID).
			Count(&count).Error; err != nil {
			return PollTally{}, err
		}

		var voters []string

		if err := db.DB.Model(&models.PollVote{}).
			Joins("JOIN users ON users.id = poll_votes.user_id").
			Where("poll_votes.poll_option_id = ?", option.ID).
			Order("poll_votes.id ASC").
			Pluck("users.name", &voters).Error; err != nil {
			return PollTally{}, err
		}

		tally.Options = append(tally.Options, OptionTally{
			Option:    option,
			VoteCount: count,
			Voters:    voters,
		})
	}

	sort.SliceStable(tally.Options, func(i, j int) bool {
		return tally.Options[i].VoteCount > tally.Options[j].VoteCount
	})

	err = db.DB.Model(&models.PollVote{}).
		Joins("JOIN poll_options ON poll_options.id = poll_votes.poll_option_id").
		Where("poll_options.poll_id = ?", pollID).
		Distinct("poll_votes.user_id").
		Count(&tally.TotalVoters).Error

	if err != nil {
		return PollTally{}, err
	}

	return tally, nil
}
