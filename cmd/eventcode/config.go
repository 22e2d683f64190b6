package main

import "os"

func showConfig() {
	data, err := loadDomain().Marshal()
	if err != nil {
		exitf("marshal domain: %s", err)
	}
	os.Stdout.Write(data)
}

func init() {
	addApplet(applet{
		name: "config",
		desc: "print the effective domain configuration",
		run: func(args []string) bool {
			if len(args) != 1 {
				return false
			}
			showConfig()
			return true
		},
	})
}
