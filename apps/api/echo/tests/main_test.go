package tests

import (
	"fmt"
	"log"
	"os"
	"testing"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/content"
	"github.com/trezcool/darasa/core/role"
	emailsvc "github.com/trezcool/darasa/services/email"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	testutil "github.com/trezcool/darasa/tests"
)

var (
	conf        *core.Config
	db          *dummydb.DB
	app         *echoapi.Server
	contentRepo content.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func TestMain(m *testing.M) {
	conf = testutil.NewConfig()

	// set up DB & repos
	var err error
	if db, err = dummydb.Open(); err != nil {
		fmt.Printf("dummydb.Open(): %v", err)
		os.Exit(1)
	}
	contentRepo = dummydb.NewContentRepository(db)

	// set up services
	logger := core.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	contentSvc := content.NewService(contentRepo, logger, mailSvc, content.PassthroughTransfer, conf)

	validate, translator := core.NewValidator()
	role.RegisterValidators(validate, translator)

	// set up server
	app = echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			ContentSvc: contentSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	os.Exit(m.Run())
}
