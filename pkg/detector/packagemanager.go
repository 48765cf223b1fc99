package detector

// DetectJSPackageManager detects the JavaScript package manager from lockfiles
func DetectJSPackageManager(fs *FSReader) string {
	switch {
	case fs.Has("bun.lockb") || fs.Has("bun.lock"):
		return "bun"
	case fs.Has("pnpm-lock.yaml"):
		return "pnpm"
	case fs.Has("yarn.lock"):
		return "yarn"
	default:
		return "npm"
	}
}

// JSInstallArgs returns the binary and arguments that install dependencies
// for the given package manager
func JSInstallArgs(pm string) (string, []string) {
	switch pm {
	case "bun":
		return "bun", []string{"install"}
	case "pnpm":
		return "pnpm", []string{"install"}
	case "yarn":
		return "yarn", []string{"install"}
	default:
		return "npm", []string{"install", "--no-audit", "--no-fund"}
	}
}
