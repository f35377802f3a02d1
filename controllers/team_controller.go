package controller

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Yumi00000/WABToDo-back-end/models"
	"github.com/Yumi00000/WABToDo-back-end/utils"
)

type TeamController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewTeamController(db *gorm.DB) *TeamController {
	return &TeamController{
		DB:     db,
		Logger: logrus.WithField("resource", "teams"),
	}
}

// ListTeams returns all teams, optionally filtered by availability.
func (tc *TeamController) ListTeams(c *fiber.Ctx) error {
	query := tc.DB.Preload("Leader").Preload("Members")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var teams []models.Team
	if err := query.Find(&teams).Error; err != nil {
		tc.Logger.WithError(err).Error("failed to list teams")
		return utils.ServerError(c, "An error occurred while retrieving lists of teams.")
	}

	response := make([]fiber.Map, 0, len(teams))
	for i := range teams {
		response = append(response, teamResponse(&teams[i]))
	}
	return c.JSON(response)
}

// GetTeam returns a single team's composition.
func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	var team models.Team
	if err := tc.DB.Preload("Leader").Preload("Members").First(&team, c.Params("id")).Error; err != nil {
		return utils.NotFound(c, "Team")
	}
	return c.JSON(teamResponse(&team))
}

// CreateTeam assembles a new team around a leader. The leader is always kept
// in the member list and everyone involved gets the team-member flag.
func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	var input struct {
		Leader        uint   `json:"leader" validate:"required"`
		ListOfMembers []uint `json:"list_of_members" validate:"required,min=1,dive,required"`
		Status        string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationError(c, err)
	}
	if input.Status == "" {
		input.Status = models.TeamStatusAvailable
	}

	var leader models.User
	if err := tc.DB.First(&leader, input.Leader).Error; err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "Team leader with this Id does not exist.")
	}

	members, err := tc.resolveMembers(input.ListOfMembers)
	if err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, err.Error())
	}

	// Leader is always a member of their own team.
	if !containsUser(members, leader.ID) {
		members = append(members, leader)
	}

	team := models.Team{LeaderID: leader.ID, Status: input.Status, Leader: leader}
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		if err := tx.Model(&team).Association("Members").Replace(members); err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id IN ?", userIDs(members)).
			Update("is_team_member", true).Error
	})
	if err != nil {
		tc.Logger.WithError(err).Error("failed to create team")
		return utils.ServerError(c, "An error occurred while creating new team")
	}

	team.Members = members
	tc.Logger.WithFields(logrus.Fields{"team_id": team.ID, "leader_id": leader.ID}).Info("team created")

	return c.Status(fiber.StatusCreated).JSON(teamResponse(&team))
}

// EditTeam replaces a team's leader, membership and status. Membership diffs
// keep each user's team-member flag accurate.
func (tc *TeamController) EditTeam(c *fiber.Ctx) error {
	var team models.Team
	if err := tc.DB.Preload("Leader").Preload("Members").First(&team, c.Params("id")).Error; err != nil {
		return utils.NotFound(c, "Team")
	}

	var input struct {
		LeaderID      *uint  `json:"leader_id"`
		ListOfMembers []uint `json:"list_of_members"`
		Status        string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if len(input.ListOfMembers) == 0 {
		return utils.Detail(c, fiber.StatusBadRequest, "Team members list is required.")
	}

	leaderID := team.LeaderID
	if input.LeaderID != nil {
		leaderID = *input.LeaderID
	}
	if !containsID(input.ListOfMembers, leaderID) {
		return utils.Detail(c, fiber.StatusBadRequest,
			fmt.Sprintf("You cannot remove this member: %d", leaderID))
	}

	var leader models.User
	if err := tc.DB.First(&leader, leaderID).Error; err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "Team leader with this Id does not exist.")
	}

	members, err := tc.resolveMembers(input.ListOfMembers)
	if err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, err.Error())
	}

	removed := removedMembers(team.Members, input.ListOfMembers)

	team.LeaderID = leader.ID
	team.Leader = leader
	if input.Status != "" {
		team.Status = input.Status
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&team).Error; err != nil {
			return err
		}
		if err := tx.Model(&team).Association("Members").Replace(members); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("id IN ?", userIDs(members)).
			Update("is_team_member", true).Error; err != nil {
			return err
		}
		if len(removed) > 0 {
			return tx.Model(&models.User{}).
				Where("id IN ?", removed).
				Update("is_team_member", false).Error
		}
		return nil
	})
	if err != nil {
		tc.Logger.WithError(err).Error("failed to update team")
		return utils.ServerError(c, "An error occurred while updating the team")
	}

	team.Members = members
	tc.Logger.WithField("team_id", team.ID).Info("team updated")

	return c.Status(fiber.StatusCreated).JSON(teamResponse(&team))
}

func (tc *TeamController) resolveMembers(ids []uint) ([]models.User, error) {
	var members []models.User
	if err := tc.DB.Where("id IN ?", ids).Find(&members).Error; err != nil {
		return nil, err
	}
	if len(members) != len(uniqueIDs(ids)) {
		return nil, fmt.Errorf("One or more member Ids do not exist.")
	}
	return members, nil
}

func containsUser(users []models.User, id uint) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func userIDs(users []models.User) []uint {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func removedMembers(current []models.User, next []uint) []uint {
	nextSet := make(map[uint]struct{}, len(next))
	for _, id := range next {
		nextSet[id] = struct{}{}
	}
	var removed []uint
	for _, m := range current {
		if _, ok := nextSet[m.ID]; !ok {
			removed = append(removed, m.ID)
		}
	}
	return removed
}
