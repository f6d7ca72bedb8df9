// Command pgwiredecode decodes a capture of PostgreSQL backend messages into JSON lines.
//
// The capture holds the server side of one or more simple query responses, as written by a proxy or extracted from
// a packet dump, starting after the startup phase. Each completed statement is printed as one JSON object.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "pgwiredecode: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "pgwiredecode"
	app.Usage = "Decode captured PostgreSQL backend messages into JSON lines"
	app.Commands = []cli.Command{
		{
			Name:  "decode",
			Usage: "Decode the query responses of a capture",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "input,i",
					Value: "-",
					Usage: "Read the capture from `FILE`, - reads stdin",
				},
				cli.StringFlag{
					Name:  "conn",
					Usage: "Settings of the captured session as a keyword/value `DSN` or URL, e.g. client_encoding and server_version",
				},
				cli.StringFlag{
					Name:  "config,c",
					Usage: "Load settings from the TOML `FILE`",
				},
				cli.StringFlag{
					Name:  "log-level",
					Usage: "trace, debug, info, warn, error or none",
				},
			},
			Action: decodeAction,
		},
	}
	return app
}

func decodeAction(c *cli.Context) error {
	s, err := loadSettings(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("conn") {
		s.Conn = c.String("conn")
	}
	if c.IsSet("log-level") {
		s.LogLevel = c.String("log-level")
	}

	errOut := c.App.ErrWriter
	if errOut == nil {
		errOut = os.Stderr
	}

	d, err := newDecoder(s, c.App.Writer, errOut)
	if err != nil {
		return err
	}
	defer d.logger.Sync()

	input := os.Stdin
	if path := c.String("input"); path != "-" {
		input, err = os.Open(path)
		if err != nil {
			return err
		}
		defer input.Close()
	}

	return d.run(input)
}
