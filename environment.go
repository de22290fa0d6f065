package paddle

// Environment selects which Paddle API the client talks to.
type Environment string

// Environment values.
const (
	Sandbox    Environment = "sandbox"
	Production Environment = "production"
)

// BaseURL returns the API root for the environment.
// Unknown environments resolve to the sandbox so a typo never hits live data.
func (e Environment) BaseURL() string {
	if e == Production {
		return "https://api.paddle.com"
	}

	return "https://sandbox-api.paddle.com"
}

// String implements fmt.Stringer.
func (e Environment) String() string {
	return string(e)
}
