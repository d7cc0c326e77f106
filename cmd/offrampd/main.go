package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/offramp-network/offramp-daemon/internal/config"
	"github.com/offramp-network/offramp-daemon/internal/core/application/checkout"
	moonpaypartner "github.com/offramp-network/offramp-daemon/internal/infrastructure/partner/moonpay"
	webhookpubsub "github.com/offramp-network/offramp-daemon/internal/infrastructure/pubsub/webhook"
	dbbadger "github.com/offramp-network/offramp-daemon/internal/infrastructure/storage/db/badger"
	bitcorewallet "github.com/offramp-network/offramp-daemon/internal/infrastructure/wallet/bitcore"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	log.Debug("starting daemon")

	dbDir := filepath.Join(config.GetDatadir(), config.DbLocation)
	if config.GetBool(config.NoPersistenceKey) {
		log.Warn("running with volatile storage, orders will not survive restarts")
		dbDir = ""
	}
	repoManager, err := dbbadger.NewRepoManager(dbDir, nil)
	if err != nil {
		log.WithError(err).Fatal("failed to open db")
	}
	defer repoManager.Close()

	pubsubSvc, err := webhookpubsub.NewWebhookPubSubService(
		repoManager.PubSubStore(),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to init pubsub service")
	}

	walletSvc, err := bitcorewallet.NewService(
		config.GetString(config.WalletAddrKey),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to wallet")
	}
	defer walletSvc.Close()

	partnerSvc, err := moonpaypartner.NewService(
		config.GetString(config.PartnerApiUrlKey),
		config.GetString(config.PartnerApiKeyKey),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to init partner client")
	}

	if _, err := checkout.NewService(
		walletSvc, partnerSvc, pubsubSvc, repoManager,
		config.GetString(config.ServiceNameKey),
		config.GetStringSlice(config.PriorityFeeChainsKey),
		checkout.WithRequoteWindow(config.GetDuration(config.RequoteWindowKey)),
	); err != nil {
		log.WithError(err).Fatal("failed to init checkout service")
	}

	log.Info("daemon is ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Debug("exiting")
}
