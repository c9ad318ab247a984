package env

type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

func (e Environment) IsDevelopment() bool { return e == Development }
func (e Environment) IsProduction() bool  { return e == Production }

// Side is where a process resolves the backend from: inside the deployment
// network (server) or from the user's machine (client).
type Side string

const (
	Client Side = "client"
	Server Side = "server"
)

func (s Side) IsServer() bool { return s == Server }
