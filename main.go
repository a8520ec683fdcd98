package main

import (
	"fmt"
	"log"

	"tableside/configs"
	"tableside/controllers"
	"tableside/middlewares"
	"tableside/pkg/mq"
	"tableside/repository"
	"tableside/routes"
	"tableside/services"
	"tableside/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := configs.LoadConfig()

	// DB
	configs.ConnectionDB(cfg.DBSource)
	db := configs.DB()
	configs.SetupDatabase()

	if err := configs.SeedAdmin(); err != nil {
		log.Fatalf("seed admin failed: %v", err)
	}
	if err := configs.SeedDefaults(); err != nil {
		log.Fatalf("seed defaults failed: %v", err)
	}

	// Notification backends
	hub := ws.NewNotifyHub()
	go hub.Run()

	publishers := services.MultiPublisher{hub}
	if cfg.AMQPURL != "" {
		amqpPub, err := mq.NewPublisher(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("amqp connect failed: %v", err)
		}
		defer amqpPub.Close()
		publishers = append(publishers, amqpPub)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tableRepo := repository.NewTableRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	promoRepo := repository.NewPromotionRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	taxRepo := repository.NewTaxSettingRepository(db)

	// Services
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	menuSvc := services.NewMenuService(menuRepo)
	tableSvc := services.NewTableService(db, tableRepo, orderRepo, reservationRepo, publishers)
	reservationSvc := services.NewReservationService(db, reservationRepo, tableRepo, orderRepo, publishers)
	billingSvc := services.NewBillingService(db, orderRepo, billingRepo, promoRepo, publishers)
	orderSvc := services.NewOrderService(db, orderRepo, menuRepo, billingRepo, publishers)

	// Same-package collaborators, wired after construction.
	tableSvc.Scheduler = reservationSvc
	tableSvc.Lifecycle = orderSvc
	reservationSvc.TableState = tableSvc
	reservationSvc.Lifecycle = orderSvc
	orderSvc.Billing = billingSvc
	orderSvc.TableState = tableSvc
	billingSvc.Lifecycle = orderSvc

	// HTTP
	r := gin.Default()
	r.Use(middlewares.CORSMiddleware())

	routes.RegisterRoutes(r, cfg, routes.Deps{
		Auth:         controllers.NewAuthController(authSvc),
		Tables:       controllers.NewTableController(tableSvc, tableRepo),
		Reservations: controllers.NewReservationController(reservationSvc),
		Orders:       controllers.NewOrderController(orderSvc),
		Billing:      controllers.NewBillingController(billingSvc),
		Menu:         controllers.NewMenuController(menuSvc),
		Promotions:   controllers.NewPromotionController(promoRepo),
		TaxSettings:  controllers.NewTaxSettingController(taxRepo),
		Hub:          hub,
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Println("server running at", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
