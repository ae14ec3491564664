// Package install downloads a chosen map release and installs it
// into the maps folder.
//
// # Pipeline
//
// The Installer runs each job through a fixed sequence:
//
//  1. Create the map's subfolder (sanitized name)
//  2. Write the JSON metadata sidecar
//  3. Copy the cached preview image next to it
//  4. Download the release archive with byte progress
//  5. Extract via the external unzip command
//  6. Poll once per second for the extracted payload file (.udk)
//  7. Rename the payload to the installable extension (.upk)
//
// # Basic Usage
//
//	installer := install.NewInstaller(httpClient, install.CommandExtractor{},
//	    install.SystemClock(), 30, func(event model.ProgressEvent) {
//	        fmt.Println(event.Message)
//	    })
//
//	job, err := installer.Download(ctx, settings.MapsFolderPath, mapResult, release)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(job.State()) // "done"
//
// # Failure Model
//
// FolderError, NetworkError and Timeout are terminal; nothing is
// retried. Filesystem and extraction failures additionally set a
// sticky error flag and message on the Installer that persist until
// ClearFolderError is called, so a UI can keep showing the failure
// after the job goroutine is gone. A folder that cannot be prepared
// fails the job before any network request.
//
// # Testing Seams
//
// The Extractor and Clock interfaces and the HTTP client are
// injectable: tests extract with fakes and drive the payload poll
// without real one-second delays.
package install
