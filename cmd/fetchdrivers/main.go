// Binary fetchdrivers downloads the server-side artifacts needed to run
// the integration environment: the UiAutomator2 server APKs that Appium
// installs on Android targets, and a chromedriver build matching the
// device WebView for hybrid-context tests.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/blang/semver"
	"github.com/golang/glog"
	"github.com/google/go-github/v27/github"
	"google.golang.org/api/option"

	"github.com/appgrid/uidriver/internal/download"
)

const (
	// desiredChromeDriverBuild is a known chromium snapshot build whose
	// chromedriver works against current Android WebView releases.
	//
	// Update this periodically.
	desiredChromeDriverBuild = "1250580"

	// minUIAutomator2Version is the oldest UiAutomator2 server release
	// whose wire behavior this client is tested against.
	minUIAutomator2Version = "5.0.0"
)

var (
	downloadChromeDriver = flag.Bool("download_chromedriver", true, "If true, download a chromedriver build for webview contexts.")
	downloadLatest       = flag.Bool("download_latest", false, "If true, download the latest versions instead of the pinned ones.")
	downloadWDA          = flag.Bool("download_wda", false, "If true, download a prebuilt WebDriverAgent for iOS simulators. Only useful on macOS hosts.")
	outputDir            = flag.String("output_dir", "", "The directory to download artifacts into. Defaults to the current directory.")
)

var files []download.File

// addLatestGithubRelease adds the asset matching assetName from the latest
// acceptable release of the repository. Releases older than minVersion are
// rejected rather than silently downloaded.
func addLatestGithubRelease(ctx context.Context, owner, repo, assetName, localFileName, minVersion string) error {
	client := github.NewClient(nil)

	rel, _, err := client.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return err
	}

	if minVersion != "" {
		min, err := semver.Parse(minVersion)
		if err != nil {
			return fmt.Errorf("invalid minimum version %q: %s", minVersion, err)
		}
		tag := strings.TrimPrefix(rel.GetTagName(), "v")
		got, err := semver.Parse(tag)
		if err != nil {
			return fmt.Errorf("cannot parse release tag %q: %s", rel.GetTagName(), err)
		}
		if got.LT(min) {
			return fmt.Errorf("latest release %s of %s/%s is older than the minimum supported %s", got, owner, repo, min)
		}
	}

	assetNameRE, err := regexp.Compile(assetName)
	if err != nil {
		return fmt.Errorf("invalid asset name regular expression %q: %s", assetName, err)
	}
	for _, a := range rel.Assets {
		if !assetNameRE.MatchString(a.GetName()) {
			continue
		}
		u := a.GetBrowserDownloadURL()
		if u == "" {
			return fmt.Errorf("%s does not have a download URL", a.GetName())
		}
		files = append(files, download.File{
			Name: localFileName,
			URL:  u,
		})
		return nil
	}

	return fmt.Errorf("release asset matching %s not found at https://github.com/%s/%s/releases", assetName, owner, repo)
}

// addChromeDriver adds a chromedriver build from the chromium snapshot
// bucket. If build is empty, the latest snapshot is used.
func addChromeDriver(ctx context.Context, build string) error {
	const (
		storageBktName       = "chromium-browser-snapshots"
		lastChangeFile       = "Linux_x64/LAST_CHANGE"
		chromeDriverFilename = "chromedriver_linux64.zip"
	)
	client, err := storage.NewClient(ctx, option.WithHTTPClient(http.DefaultClient))
	if err != nil {
		return fmt.Errorf("cannot create a storage client for downloading chromedriver: %v", err)
	}
	bkt := client.Bucket(storageBktName)
	if build == "" {
		r, err := bkt.Object(lastChangeFile).NewReader(ctx)
		if err != nil {
			return fmt.Errorf("cannot create a reader for gs://%s/%s: %v", storageBktName, lastChangeFile, err)
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("cannot read gs://%s/%s: %v", storageBktName, lastChangeFile, err)
		}
		build = strings.TrimSpace(string(data))
	}

	pkg := path.Join("Linux_x64", build, chromeDriverFilename)
	attrs, err := bkt.Object(pkg).Attrs(ctx)
	if err != nil {
		return fmt.Errorf("cannot get chromedriver package gs://%s/%s attrs: %v", storageBktName, pkg, err)
	}
	files = append(files, download.File{
		Name:     chromeDriverFilename,
		URL:      attrs.MediaLink,
		Hash:     hex.EncodeToString(attrs.MD5),
		HashType: "md5",
		Rename:   []string{"chromedriver_linux64/chromedriver", "chromedriver"},
	})
	return nil
}

func main() {
	flag.Parse()
	ctx := context.Background()

	if *downloadChromeDriver {
		build := desiredChromeDriverBuild
		if *downloadLatest {
			build = ""
		}
		if err := addChromeDriver(ctx, build); err != nil {
			glog.Errorf("Unable to download chromedriver: %v", err)
		}
	}

	if err := addLatestGithubRelease(ctx, "appium", "appium-uiautomator2-server",
		`appium-uiautomator2-server-v.*\.apk`, "uiautomator2-server.apk",
		minUIAutomator2Version); err != nil {
		glog.Errorf("Unable to find the latest UiAutomator2 server: %s", err)
	}

	if err := addLatestGithubRelease(ctx, "appium", "appium-uiautomator2-server",
		`appium-uiautomator2-server-debug-androidTest\.apk`, "uiautomator2-server-test.apk",
		""); err != nil {
		glog.Errorf("Unable to find the UiAutomator2 instrumentation APK: %s", err)
	}

	if *downloadWDA {
		if err := addLatestGithubRelease(ctx, "appium", "WebDriverAgent",
			`WebDriverAgentRunner-Build-Sim-arm64\.zip`, "webdriveragent-sim.zip",
			""); err != nil {
			glog.Errorf("Unable to find a prebuilt WebDriverAgent: %s", err)
		}
	}

	if err := download.All(files, *outputDir); err != nil {
		glog.Exit(err.Error())
	}
}
