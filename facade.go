package enigma

import (
	"fmt"

	"github.com/goliatone/go-enigma/adapters/gocommand"
	enigmacommand "github.com/goliatone/go-enigma/command"
	enigmaquery "github.com/goliatone/go-enigma/query"
)

type CommandQueryService interface {
	enigmacommand.VerifyService
	enigmacommand.AdminService
	enigmaquery.EnigmaReader
}

type Commands struct {
	Verify *enigmacommand.VerifyEnigmaCommand
	Create *enigmacommand.CreateEnigmaCommand
	Delete *enigmacommand.DeleteEnigmaCommand
}

type Queries struct {
	Get  *enigmaquery.GetEnigmaQuery
	List *enigmaquery.ListEnigmasQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("enigma: command/query service is required")
	}
	return &Facade{
		service: service,
		commands: Commands{
			Verify: enigmacommand.NewVerifyEnigmaCommand(service),
			Create: enigmacommand.NewCreateEnigmaCommand(service),
			Delete: enigmacommand.NewDeleteEnigmaCommand(service),
		},
		queries: Queries{
			Get:  enigmaquery.NewGetEnigmaQuery(service),
			List: enigmaquery.NewListEnigmasQuery(service),
		},
	}, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

// Register subscribes every command and query on the go-command dispatcher and
// records them in the adapter's registry. Callers release the handlers with
// Unsubscribe on the returned set.
func (f *Facade) Register(adapter *gocommand.RegistryAdapter) (gocommand.Subscriptions, error) {
	if f == nil {
		return nil, fmt.Errorf("enigma: facade is required")
	}
	var subs gocommand.Subscriptions
	fail := func(err error) (gocommand.Subscriptions, error) {
		subs.Unsubscribe()
		return nil, err
	}

	verify, err := gocommand.RegisterAndSubscribe(adapter, f.commands.Verify)
	if err != nil {
		return fail(err)
	}
	subs = append(subs, verify)
	create, err := gocommand.RegisterAndSubscribe(adapter, f.commands.Create)
	if err != nil {
		return fail(err)
	}
	subs = append(subs, create)
	remove, err := gocommand.RegisterAndSubscribe(adapter, f.commands.Delete)
	if err != nil {
		return fail(err)
	}
	subs = append(subs, remove)
	get, err := gocommand.RegisterAndSubscribeQuery(adapter, f.queries.Get)
	if err != nil {
		return fail(err)
	}
	subs = append(subs, get)
	list, err := gocommand.RegisterAndSubscribeQuery(adapter, f.queries.List)
	if err != nil {
		return fail(err)
	}
	subs = append(subs, list)

	if err := adapter.Initialize(); err != nil {
		return fail(err)
	}
	return subs, nil
}
