package controller

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yumi00000/WABToDo-back-end/models"
)

func TestCreateOrderDefaults(t *testing.T) {
	app, db := setupTestApp(t)
	owner := createUser(t, db, "owner")
	token := tokenFor(t, db, owner)

	resp, body := doRequest(t, app, "POST", "/api/orders/create/", token, map[string]interface{}{
		"name":        "Website redesign",
		"description": longDescription(),
		"deadline":    "2026-12-31",
	})
	require.Equal(t, 201, resp.StatusCode)

	assert.Equal(t, false, body["accepted"])
	assert.Nil(t, body["acceptedAt"])
	assert.Nil(t, body["updatedAt"])
	assert.Nil(t, body["team"])
	assert.Equal(t, models.OrderStatusActive, body["status"])
	assert.Equal(t, "2026-12-31", body["deadline"])
	assert.Equal(t, []interface{}{}, body["tasks"])
}

func TestCreateOrderValidation(t *testing.T) {
	app, db := setupTestApp(t)
	owner := createUser(t, db, "owner")
	token := tokenFor(t, db, owner)

	resp, body := doRequest(t, app, "POST", "/api/orders/create/", token, map[string]interface{}{
		"name":        "Web",
		"description": longDescription(),
		"deadline":    "2026-12-31",
	})
	require.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Name must be at least 5 characters long.", body["name"])

	resp, body = doRequest(t, app, "POST", "/api/orders/create/", token, map[string]interface{}{
		"name":        "Website redesign",
		"description": "too short",
		"deadline":    "2026-12-31",
	})
	require.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Description must be at least 100 characters long.", body["description"])

	resp, body = doRequest(t, app, "POST", "/api/orders/create/", token, map[string]interface{}{
		"name":        "Website redesign",
		"description": longDescription(),
		"deadline":    "31-12-2026",
	})
	require.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.", body["deadline"])
}

func TestEditOrderForbiddenForStranger(t *testing.T) {
	app, db := setupTestApp(t)
	owner := createUser(t, db, "owner")
	stranger := createUser(t, db, "stranger")
	order := createOrder(t, db, owner)

	resp, body := doRequest(t, app, "PATCH", fmt.Sprintf("/api/orders/edit/%d", order.ID),
		tokenFor(t, db, stranger), map[string]interface{}{"name": "Hijacked order"})
	require.Equal(t, 403, resp.StatusCode)
	assert.Equal(t, "You do not have permission to perform this action.", body["detail"])

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, order.Name, reloaded.Name)
	assert.Nil(t, reloaded.UpdatedAt)
}

func TestEditOrderByOwnerSetsUpdatedAt(t *testing.T) {
	app, db := setupTestApp(t)
	owner := createUser(t, db, "owner")
	order := createOrder(t, db, owner)

	resp, body := doRequest(t, app, "PATCH", fmt.Sprintf("/api/orders/edit/%d", order.ID),
		tokenFor(t, db, owner), map[string]interface{}{"name": "Renamed order"})
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "Renamed order", body["name"])
	assert.NotNil(t, body["updatedAt"])

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, "Renamed order", reloaded.Name)
	assert.NotNil(t, reloaded.UpdatedAt)
}

func TestEditOrderNotFound(t *testing.T) {
	app, db := setupTestApp(t)
	owner := createUser(t, db, "owner")

	resp, body := doRequest(t, app, "PATCH", "/api/orders/edit/999",
		tokenFor(t, db, owner), map[string]interface{}{"name": "Whatever name"})
	require.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "No Order matches the given query.", body["detail"])
}

func TestManageOrderAcceptBindsTeam(t *testing.T) {
	app, db := setupTestApp(t)
	admin := createUser(t, db, "admin", asAdmin())
	owner := createUser(t, db, "owner")
	leader := createUser(t, db, "leader")
	team := createTeam(t, db, leader)
	order := createOrder(t, db, owner)

	resp, body := doRequest(t, app, "PATCH", fmt.Sprintf("/api/orders/management/%d", order.ID),
		tokenFor(t, db, admin), map[string]interface{}{
			"accepted": true,
			"team":     team.ID,
			"status":   models.OrderStatusActive,
		})
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, true, body["accepted"])
	assert.NotNil(t, body["acceptedAt"])

	var reloadedTeam models.Team
	require.NoError(t, db.First(&reloadedTeam, team.ID).Error)
	assert.Equal(t, models.TeamStatusUnavailable, reloadedTeam.Status)
}

func TestManageOrderAcceptedAtSetOnce(t *testing.T) {
	app, db := setupTestApp(t)
	admin := createUser(t, db, "admin", asAdmin())
	owner := createUser(t, db, "owner")
	leader := createUser(t, db, "leader")
	team := createTeam(t, db, leader)
	order := createOrder(t, db, owner)

	token := tokenFor(t, db, admin)
	payload := map[string]interface{}{
		"accepted": true,
		"team":     team.ID,
		"status":   models.OrderStatusActive,
	}

	resp, _ := doRequest(t, app, "PATCH", fmt.Sprintf("/api/orders/management/%d", order.ID), token, payload)
	require.Equal(t, 200, resp.StatusCode)

	var first models.Order
	require.NoError(t, db.First(&first, order.ID).Error)
	require.NotNil(t, first.AcceptedAt)

	resp, _ = doRequest(t, app, "PATCH", fmt.Sprintf("/api/orders/management/%d", order.ID), token, payload)
	require.Equal(t, 200, resp.StatusCode)

	var second models.Order
	require.NoError(t, db.First(&second, order.ID).Error)
	require.NotNil(t, second.AcceptedAt)
	assert.True(t, first.AcceptedAt.Equal(*second.AcceptedAt))
}

func TestManageOrderUnknownTeam(t *testing.T) {
	app, db := setupTestApp(t)
	admin := createUser(t, db, "admin", asAdmin())
	owner := createUser(t, db, "owner")
	order := createOrder(t, db, owner)

	resp, body := doRequest(t, app, "PATCH", fmt.Sprintf("/api/orders/management/%d", order.ID),
		tokenFor(t, db, admin), map[string]interface{}{
			"accepted": true,
			"team":     999,
			"status":   models.OrderStatusActive,
		})
	require.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Team with this Id does not exist.", body["error"])
}

func TestManageOrderUnavailableTeam(t *testing.T) {
	app, db := setupTestApp(t)
	admin := createUser(t, db, "admin", asAdmin())
	owner := createUser(t, db, "owner")
	leader := createUser(t, db, "leader")
	team := createTeam(t, db, leader)
	require.NoError(t, db.Model(team).Update("status", models.TeamStatusUnavailable).Error)
	order := createOrder(t, db, owner)

	resp, body := doRequest(t, app, "PATCH", fmt.Sprintf("/api/orders/management/%d", order.ID),
		tokenFor(t, db, admin), map[string]interface{}{
			"accepted": true,
			"team":     team.ID,
			"status":   models.OrderStatusActive,
		})
	require.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "This team is currently unavailable.", body["message"])

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.False(t, reloaded.Accepted)
}

func TestCloseOrderReleasesTeam(t *testing.T) {
	app, db := setupTestApp(t)
	admin := createUser(t, db, "admin", asAdmin())
	owner := createUser(t, db, "owner")
	leader := createUser(t, db, "leader")
	team := createTeam(t, db, leader)
	order := createOrder(t, db, owner)

	token := tokenFor(t, db, admin)
	resp, _ := doRequest(t, app, "PATCH", fmt.Sprintf("/api/orders/management/%d", order.ID),
		token, map[string]interface{}{
			"accepted": true,
			"team":     team.ID,
			"status":   models.OrderStatusActive,
		})
	require.Equal(t, 200, resp.StatusCode)

	resp, body := doRequest(t, app, "PATCH", fmt.Sprintf("/api/orders/management/%d", order.ID),
		token, map[string]interface{}{"status": models.OrderStatusClosed})
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, models.OrderStatusClosed, body["status"])

	var reloadedTeam models.Team
	require.NoError(t, db.First(&reloadedTeam, team.ID).Error)
	assert.Equal(t, models.TeamStatusAvailable, reloadedTeam.Status)
}

func TestManagementRequiresAdmin(t *testing.T) {
	app, db := setupTestApp(t)
	owner := createUser(t, db, "owner")
	order := createOrder(t, db, owner)

	resp, _ := doRequest(t, app, "PATCH", fmt.Sprintf("/api/orders/management/%d", order.ID),
		tokenFor(t, db, owner), map[string]interface{}{"status": models.OrderStatusClosed})
	assert.Equal(t, 403, resp.StatusCode)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.OrderStatusActive, reloaded.Status)
}

func TestListOwnOrdersVisibility(t *testing.T) {
	app, db := setupTestApp(t)
	owner := createUser(t, db, "owner")
	other := createUser(t, db, "other")
	createOrder(t, db, owner)
	createOrder(t, db, other)

	resp, list := doRequestList(t, app, "GET", "/api/orders/", tokenFor(t, db, owner))
	require.Equal(t, 200, resp.StatusCode)
	require.Len(t, list, 1)
	assert.EqualValues(t, owner.ID, list[0]["owner"])
}
