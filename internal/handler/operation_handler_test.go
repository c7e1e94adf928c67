package handler

import (
	"net/http"
	"sync"
	"testing"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/events"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/model/entity"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/repository"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/service"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/testutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func setupOperationTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, nil, events.NopDispatcher{}, zap.NewNop())
	handlers := NewHandlers(services, events.NewHub(zap.NewNop()))

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/cells", handlers.Cell.List)
	api.GET("/cells/:id/capacity", handlers.Cell.CheckCapacity)
	api.GET("/operations/:id", handlers.Operation.Get)
	api.POST("/operations/:id/start", handlers.Operation.Start)
	api.POST("/operations/:id/pause", handlers.Operation.Pause)
	api.POST("/operations/:id/resume", handlers.Operation.Resume)
	api.POST("/operations/:id/complete", handlers.Operation.Complete)
	api.GET("/jobs/:id/routing", handlers.Routing.JobRouting)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func seedBusyCell(t *testing.T, env *testutil.TestEnv, cellID string, limit, warn *int, enforce bool, inProgress int) {
	t.Helper()
	testutil.SeedCell(t, env.DB, cellID, "Laser "+cellID, 1, limit, warn, enforce)
	for i := 0; i < inProgress; i++ {
		testutil.SeedOperation(t, env.DB,
			uuid.New().String(), cellID, uuid.New().String(),
			entity.OpStatusInProgress, 10)
	}
}

func intPtr(v int) *int { return &v }

func TestCheckCapacityAtWarningThreshold(t *testing.T) {
	env := setupOperationTest(t)
	cellID := "aaaaaaaa-0000-0000-0000-000000000001"
	seedBusyCell(t, env, cellID, intPtr(5), intPtr(4), true, 4)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/cells/"+cellID+"/capacity", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["allowed"] != true {
		t.Errorf("expected allowed at threshold, got %v", data)
	}
	if data["warning"] != true {
		t.Errorf("expected warning at threshold, got %v", data)
	}
}

func TestStartBlockedAtLimit(t *testing.T) {
	env := setupOperationTest(t)
	cellID := "aaaaaaaa-0000-0000-0000-000000000002"
	seedBusyCell(t, env, cellID, intPtr(5), intPtr(4), true, 5)
	opID := "bbbbbbbb-0000-0000-0000-000000000001"
	testutil.SeedOperation(t, env.DB, opID, cellID, "cccccccc-0000-0000-0000-000000000001", entity.OpStatusNotStarted, 10)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/operations/"+opID+"/start", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 at WIP limit, got %d: %s", w.Code, w.Body.String())
	}

	var op entity.Operation
	if err := env.DB.Where("id = ?", opID).First(&op).Error; err != nil {
		t.Fatalf("reload operation: %v", err)
	}
	if op.Status != entity.OpStatusNotStarted {
		t.Errorf("blocked start must not transition, got %s", op.Status)
	}
}

func TestStartAdvisoryLimitAllows(t *testing.T) {
	env := setupOperationTest(t)
	cellID := "aaaaaaaa-0000-0000-0000-000000000003"
	seedBusyCell(t, env, cellID, intPtr(2), nil, false, 2)
	opID := "bbbbbbbb-0000-0000-0000-000000000002"
	testutil.SeedOperation(t, env.DB, opID, cellID, "cccccccc-0000-0000-0000-000000000002", entity.OpStatusNotStarted, 10)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/operations/"+opID+"/start", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("advisory limit must not block, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	capacity := data["capacity"].(map[string]interface{})
	if capacity["warning"] != true {
		t.Errorf("expected advisory warning, got %v", capacity)
	}
}

func TestOperationLifecycle(t *testing.T) {
	env := setupOperationTest(t)
	cellID := "aaaaaaaa-0000-0000-0000-000000000004"
	seedBusyCell(t, env, cellID, intPtr(5), nil, true, 0)
	opID := "bbbbbbbb-0000-0000-0000-000000000003"
	testutil.SeedOperation(t, env.DB, opID, cellID, "cccccccc-0000-0000-0000-000000000003", entity.OpStatusNotStarted, 10)
	token := testutil.DefaultTestToken()

	steps := []struct {
		path string
		want string
	}{
		{"/start", entity.OpStatusInProgress},
		{"/pause", entity.OpStatusOnHold},
		{"/resume", entity.OpStatusInProgress},
		{"/complete", entity.OpStatusCompleted},
	}
	for _, step := range steps {
		w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/operations/"+opID+step.path, nil, token)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", step.path, w.Code, w.Body.String())
		}
		var op entity.Operation
		if err := env.DB.Where("id = ?", opID).First(&op).Error; err != nil {
			t.Fatalf("reload operation: %v", err)
		}
		if op.Status != step.want {
			t.Errorf("%s: expected status %s, got %s", step.path, step.want, op.Status)
		}
	}

	// Completion stamps the finish time in the same write as the status.
	var op entity.Operation
	if err := env.DB.Where("id = ?", opID).First(&op).Error; err != nil {
		t.Fatalf("reload operation: %v", err)
	}
	if op.CompletedAt == nil {
		t.Error("completed operation must carry CompletedAt")
	}
}

func TestConcurrentStartsHoldLimit(t *testing.T) {
	env := setupOperationTest(t)
	cellID := uuid.New().String()
	const limit = 3
	seedBusyCell(t, env, cellID, intPtr(limit), nil, true, 0)

	const attempts = 8
	opIDs := make([]string, attempts)
	for i := range opIDs {
		opIDs[i] = uuid.New().String()
		testutil.SeedOperation(t, env.DB, opIDs[i], cellID, uuid.New().String(), entity.OpStatusNotStarted, 10)
	}
	token := testutil.DefaultTestToken()

	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := range opIDs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/operations/"+opIDs[i]+"/start", nil, token)
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	var started int64
	if err := env.DB.Model(&entity.Operation{}).
		Where("cell_id = ? AND status = ?", cellID, entity.OpStatusInProgress).
		Count(&started).Error; err != nil {
		t.Fatalf("count in_progress: %v", err)
	}
	if started > limit {
		t.Errorf("committed in_progress count %d exceeds the enforced limit %d", started, limit)
	}

	var admitted int
	for i, code := range codes {
		switch code {
		case http.StatusOK:
			admitted++
		case http.StatusConflict:
		default:
			t.Errorf("attempt %d: unexpected status %d", i, code)
		}
	}
	if int64(admitted) != started {
		t.Errorf("successful starts (%d) disagree with committed in_progress count (%d)", admitted, started)
	}
}

func TestListCellsOccupancy(t *testing.T) {
	env := setupOperationTest(t)
	cellA := uuid.New().String()
	cellB := uuid.New().String()
	seedBusyCell(t, env, cellA, intPtr(5), nil, true, 2)
	seedBusyCell(t, env, cellB, nil, nil, false, 0)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/cells", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(items))
	}
	for _, raw := range items {
		item := raw.(map[string]interface{})
		cell := item["cell"].(map[string]interface{})
		capacity := item["capacity"].(map[string]interface{})
		switch cell["id"] {
		case cellA:
			if capacity["current_wip"].(float64) != 2 {
				t.Errorf("cell A: expected wip 2, got %v", capacity["current_wip"])
			}
		case cellB:
			if capacity["current_wip"].(float64) != 0 {
				t.Errorf("cell B: expected wip 0, got %v", capacity["current_wip"])
			}
			if capacity["limit"] != nil {
				t.Errorf("cell B: expected nil limit, got %v", capacity["limit"])
			}
		default:
			t.Errorf("unexpected cell id %v", cell["id"])
		}
	}
}

func TestStartWrongStatus(t *testing.T) {
	env := setupOperationTest(t)
	cellID := "aaaaaaaa-0000-0000-0000-000000000005"
	seedBusyCell(t, env, cellID, nil, nil, false, 0)
	opID := "bbbbbbbb-0000-0000-0000-000000000004"
	testutil.SeedOperation(t, env.DB, opID, cellID, "cccccccc-0000-0000-0000-000000000004", entity.OpStatusCompleted, 10)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/operations/"+opID+"/start", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for completed operation, got %d", w.Code)
	}
}

func TestJobRoutingProgress(t *testing.T) {
	env := setupOperationTest(t)
	jobID := "dddddddd-0000-0000-0000-000000000001"
	env.DB.Create(&entity.Job{ID: jobID, TenantID: testutil.TestTenant, JobNumber: "J-100", Status: "active"})

	partID := "cccccccc-0000-0000-0000-000000000010"
	env.DB.Create(&entity.Part{ID: partID, TenantID: testutil.TestTenant, JobID: jobID, PartNumber: "P-1", Quantity: 10})

	cellA := "aaaaaaaa-0000-0000-0000-000000000010"
	cellB := "aaaaaaaa-0000-0000-0000-000000000011"
	testutil.SeedCell(t, env.DB, cellA, "Cut", 1, nil, nil, false)
	testutil.SeedCell(t, env.DB, cellB, "Bend", 2, nil, nil, false)

	testutil.SeedOperation(t, env.DB, "ee000000-0000-0000-0000-000000000001", cellA, partID, entity.OpStatusCompleted, 10)
	testutil.SeedOperation(t, env.DB, "ee000000-0000-0000-0000-000000000002", cellA, partID, entity.OpStatusCompleted, 10)
	testutil.SeedOperation(t, env.DB, "ee000000-0000-0000-0000-000000000003", cellB, partID, entity.OpStatusInProgress, 10)
	testutil.SeedOperation(t, env.DB, "ee000000-0000-0000-0000-000000000004", cellB, partID, entity.OpStatusNotStarted, 10)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/jobs/"+jobID+"/routing", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["percentage"].(float64) != 50 {
		t.Errorf("2 of 4 complete should be 50%%, got %v", data["percentage"])
	}
	steps := data["steps"].([]interface{})
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	first := steps[0].(map[string]interface{})
	if first["cell_name"] != "Cut" || first["status"] != entity.StepStatusCompleted {
		t.Errorf("unexpected first step: %v", first)
	}
}
