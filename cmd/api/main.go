package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/masar-hr/payroll-engine-go/internal/config"
	appHTTP "github.com/masar-hr/payroll-engine-go/internal/handler/http"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/database"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/jwt"
	"github.com/masar-hr/payroll-engine-go/internal/repository/postgresql"
	advanceService "github.com/masar-hr/payroll-engine-go/internal/service/advance"
	"github.com/masar-hr/payroll-engine-go/internal/service/aggregation"
	exportService "github.com/masar-hr/payroll-engine-go/internal/service/export"
	"github.com/masar-hr/payroll-engine-go/internal/service/payrollrun"
	payslipService "github.com/masar-hr/payroll-engine-go/internal/service/payslip"
	"github.com/masar-hr/payroll-engine-go/internal/service/policyengine"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "payroll-engine"),
	)

	runRepo := postgresql.NewRunRepository(db)
	payslipRepo := postgresql.NewPayslipRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	policyRepo := postgresql.NewPolicyRepository(db)
	statutoryRepo := postgresql.NewStatutoryRepository(db)
	advanceRepo := postgresql.NewAdvanceRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	aggregationSvc := aggregation.NewService(attendanceRepo)
	generator := payslipService.NewGenerator(
		db,
		runRepo,
		payslipRepo,
		employeeRepo,
		policyRepo,
		advanceRepo,
		aggregationSvc,
		logger,
	)
	validator := payrollrun.NewValidator(employeeRepo, aggregationSvc)
	runSvc := payrollrun.NewService(
		db,
		runRepo,
		payslipRepo,
		employeeRepo,
		statutoryRepo,
		advanceRepo,
		generator,
		validator,
		logger,
	)
	exportSvc := exportService.NewService(runRepo, payslipRepo, employeeRepo, statutoryRepo, logger)
	advanceSvc := advanceService.NewService(db, advanceRepo, logger)
	policyEngine := policyengine.NewEngine(policyRepo, employeeRepo, logger)

	payrollHandler := appHTTP.NewPayrollRunHandler(runSvc)
	policyHandler := appHTTP.NewPolicyHandler(policyEngine)
	exportHandler := appHTTP.NewExportHandler(exportSvc)
	advanceHandler := appHTTP.NewAdvanceHandler(advanceSvc)

	router := appHTTP.NewRouter(
		JWTService,
		payrollHandler,
		policyHandler,
		exportHandler,
		advanceHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
